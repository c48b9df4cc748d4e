package services

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/dmitrijs2005/voicediary/internal/common"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
)

// Accepted recording formats and per-tier upload caps.
var AllowedAudioExtensions = []string{".mp3", ".wav", ".m4a", ".webm"}

const (
	MaxFreeAudioSize    int64 = 10 << 20
	MaxPremiumAudioSize int64 = 50 << 20
)

// AudioExtension returns the lower-cased extension of name, or a validation
// error when it is not an accepted recording format.
func AudioExtension(name string) (string, error) {
	ext := strings.ToLower(path.Ext(name))
	if !slices.Contains(AllowedAudioExtensions, ext) {
		return "", fmt.Errorf("%w: unsupported audio format %q, allowed: %s",
			common.ErrValidation, ext, strings.Join(AllowedAudioExtensions, ", "))
	}
	return ext, nil
}

// MaxAudioSize is the largest recording accepted for the tier, in bytes.
func MaxAudioSize(tier models.ProcessingTier) int64 {
	if tier == models.TierPremium {
		return MaxPremiumAudioSize
	}
	return MaxFreeAudioSize
}

func checkAudioSize(size int64, tier models.ProcessingTier) error {
	if limit := MaxAudioSize(tier); size > limit {
		return fmt.Errorf("%w: audio is %d bytes, limit for %s tier is %d", common.ErrValidation, size, tier, limit)
	}
	return nil
}

// validateSubmission checks everything that does not depend on the user's tier.
func validateSubmission(req SubmitRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	if !req.Kind.Valid() {
		return fmt.Errorf("%w: unknown entry kind %q", common.ErrValidation, req.Kind)
	}
	switch req.Kind {
	case models.EntryKindText:
		if strings.TrimSpace(req.Text) == "" {
			return fmt.Errorf("%w: text entry has no content", common.ErrValidation)
		}
	case models.EntryKindVoice:
		if req.AudioRef == "" {
			return nil
		}
		name := req.AudioName
		if name == "" {
			name = req.AudioRef
		}
		if _, err := AudioExtension(name); err != nil {
			return err
		}
		if req.AudioSize < 0 {
			return fmt.Errorf("%w: negative audio size", common.ErrValidation)
		}
	}
	return nil
}
