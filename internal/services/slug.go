package services

import (
	"fmt"

	"gym_club_backend/pkg/utils"
)

// uniqueSlug slugifies source and appends "-{unixMillis}" when the slug is
// already taken by a row other than excludeID, counting up until free.
func uniqueSlug(source, fallback, excludeID string, exists func(slug, excludeID string) (bool, error), now Clock) (string, error) {
	slug := utils.Slugify(source)
	if slug == "" {
		slug = fallback
	}
	taken, err := exists(slug, excludeID)
	if err != nil {
		return "", err
	}
	if !taken {
		return slug, nil
	}
	// two writes in the same millisecond can still collide
	for millis := now().UnixMilli(); ; millis++ {
		candidate := fmt.Sprintf("%s-%d", slug, millis)
		taken, err := exists(candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}
