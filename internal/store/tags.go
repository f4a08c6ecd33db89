package store

import "github.com/ayush/auth-server/internal/models"

func toTags(raw []string) []models.Tag {
	tags := make([]models.Tag, len(raw))
	for i, r := range raw {
		tags[i] = models.Tag(r)
	}
	return tags
}

func fromTags(tags []models.Tag) []string {
	raw := make([]string, len(tags))
	for i, t := range tags {
		raw[i] = string(t)
	}
	return raw
}
