package persistence

import "strings"

// Key layout shared by every store driver.
const (
	cvKeyPrefix          = "cv:"
	sharedKeyPrefix      = "shared_cv:"
	viewsKeyPrefix       = "cv_views:"
	downloadsKeyPrefix   = "cv_downloads:"
	lastViewedKeyPrefix  = "cv_last_viewed:"
	preferencesKeyPrefix = "user_preferences:"
	userKeyPrefix        = "user:"
)

func CVPrefix(ownerID string) string { return cvKeyPrefix + ownerID + ":" }

func CVKey(ownerID, id string) string { return CVPrefix(ownerID) + id }

func SharedKey(shareID string) string { return sharedKeyPrefix + shareID }

func ViewsKey(shareID string) string { return viewsKeyPrefix + shareID }

func DownloadsKey(cvID string) string { return downloadsKeyPrefix + cvID }

func LastViewedKey(cvID string) string { return lastViewedKeyPrefix + cvID }

func PreferencesKey(userID string) string { return preferencesKeyPrefix + userID }

func UserKey(email string) string {
	return userKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}
