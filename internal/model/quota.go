package model

// Action is a billable operation routed through the entitlement gate.
type Action string

const (
	ActionArticle          Action = "article"
	ActionBlogTitle        Action = "blog-title"
	ActionImage            Action = "image"
	ActionRemoveBackground Action = "remove-background"
)

// BillableActions lists every action the gate meters.
func BillableActions() []Action {
	return []Action{ActionArticle, ActionBlogTitle, ActionImage, ActionRemoveBackground}
}

// IsBillable reports whether a is one of BillableActions.
func (a Action) IsBillable() bool {
	switch a {
	case ActionArticle, ActionBlogTitle, ActionImage, ActionRemoveBackground:
		return true
	}
	return false
}

// Unlimited marks a quota that never denies.
const Unlimited int64 = -1

// BucketUsage reports one quota counter for a user.
type BucketUsage struct {
	Bucket    string   `json:"bucket"`
	Actions   []Action `json:"actions"`
	Limit     int64    `json:"limit"`
	Used      int64    `json:"used"`
	Remaining int64    `json:"remaining"`
}

// UsageSummary reports all quota counters for a user.
type UsageSummary struct {
	Plan   Plan           `json:"plan"`
	Quotas []*BucketUsage `json:"quotas"`
}
