// Package main Arix Server API
//
//	@title						Arix Server API
//	@version					1.0
//	@description				AI content generation backend: articles, blog titles, images and background removal with free-tier quotas.
//
//	@host						localhost:3000
//	@BasePath					/api
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token from the identity provider. Format: "Bearer {token}"
//
//	@tag.name					AI
//	@tag.description			Generation endpoints, metered by plan
//
//	@tag.name					User
//	@tag.description			Creations, community feed and usage
//
//	@tag.name					Payment
//	@tag.description			Test payment upgrade
package main
