package entitlement

import (
	"fmt"
	"sort"

	"github.com/arix/server/internal/model"
)

// Bucket is one free-tier counter shared by a set of actions.
type Bucket struct {
	Name      string
	FreeLimit int64
	Actions   []model.Action
}

// Policy maps actions to quota buckets.
type Policy struct {
	buckets   map[string]*Bucket
	actions   map[model.Action]string
	unmetered map[model.Action]bool
}

// NewPolicy builds a policy from bucket limits and an action-to-bucket table.
// Every billable action must be mapped to a bucket or listed in unmetered;
// anything else is rejected so a config slip cannot lift a free-tier limit.
func NewPolicy(limits map[string]int64, actions map[string]string, unmetered []string) (*Policy, error) {
	p := &Policy{
		buckets:   make(map[string]*Bucket, len(limits)),
		actions:   make(map[model.Action]string, len(actions)),
		unmetered: make(map[model.Action]bool, len(unmetered)),
	}
	for name, limit := range limits {
		if limit < 0 {
			return nil, fmt.Errorf("%w: bucket %q has negative limit", ErrInvalidPolicy, name)
		}
		p.buckets[name] = &Bucket{Name: name, FreeLimit: limit}
	}

	names := make([]string, 0, len(actions))
	for a := range actions {
		names = append(names, a)
	}
	sort.Strings(names)

	for _, a := range names {
		action := model.Action(a)
		if !action.IsBillable() {
			return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidPolicy, a)
		}
		bucket := actions[a]
		b, ok := p.buckets[bucket]
		if !ok {
			return nil, fmt.Errorf("%w: action %q references unknown bucket %q", ErrInvalidPolicy, a, bucket)
		}
		p.actions[action] = bucket
		b.Actions = append(b.Actions, action)
	}

	for _, a := range unmetered {
		action := model.Action(a)
		if !action.IsBillable() {
			return nil, fmt.Errorf("%w: unknown unmetered action %q", ErrInvalidPolicy, a)
		}
		if _, mapped := p.actions[action]; mapped {
			return nil, fmt.Errorf("%w: action %q is both metered and unmetered", ErrInvalidPolicy, a)
		}
		p.unmetered[action] = true
	}

	for _, action := range model.BillableActions() {
		if _, mapped := p.actions[action]; !mapped && !p.unmetered[action] {
			return nil, fmt.Errorf("%w: action %q has no bucket and is not declared unmetered", ErrInvalidPolicy, action)
		}
	}
	return p, nil
}

// DefaultPolicy is the production table: text actions share 10, image actions share 3.
func DefaultPolicy() *Policy {
	p, _ := NewPolicy(
		map[string]int64{"text": 10, "image": 3},
		map[string]string{
			string(model.ActionArticle):          "text",
			string(model.ActionBlogTitle):        "text",
			string(model.ActionImage):            "image",
			string(model.ActionRemoveBackground): "image",
		},
		nil,
	)
	return p
}

// BucketFor returns the bucket metering action. A nil bucket with a nil error
// means the action was declared unmetered; unknown actions are an error.
func (p *Policy) BucketFor(action model.Action) (*Bucket, error) {
	if name, ok := p.actions[action]; ok {
		return p.buckets[name], nil
	}
	if p.unmetered[action] {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

// Buckets returns all buckets ordered by name.
func (p *Policy) Buckets() []*Bucket {
	out := make([]*Bucket, 0, len(p.buckets))
	for _, b := range p.buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
