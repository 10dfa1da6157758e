package domain

import "time"

type FeatureIdentifier string

const (
	FeatureNoteHistory30Days    FeatureIdentifier = "org.standardnotes.note-history-30"
	FeatureNoteHistory365Days   FeatureIdentifier = "org.standardnotes.note-history-365"
	FeatureNoteHistoryUnlimited FeatureIdentifier = "org.standardnotes.note-history-unlimited"
	FeatureDailyEmailBackup     FeatureIdentifier = "org.standardnotes.daily-email-backup"
	FeatureFilesMaximumStorage  FeatureIdentifier = "org.standardnotes.files-max-storage-tier"
	FeatureTwoFactorAuthManager FeatureIdentifier = "org.standardnotes.two-factor-auth"
)

// Entitlement is a single feature grant from the account service.
// A nil ExpiresAt means the grant has no expiry.
type Entitlement struct {
	Identifier FeatureIdentifier `json:"identifier"`
	ExpiresAt  *time.Time        `json:"expires_at"`
}
