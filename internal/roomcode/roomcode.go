// Package roomcode issues the short join tokens used to request family
// membership.
package roomcode

import (
	"crypto/rand"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"kindred/internal/models"
)

// Length is the fixed room code length.
const Length = 6

// Codes avoid lowercase so they survive being read aloud or typed from
// a phone; lookups normalize with Normalize.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const maxAttempts = 10

// Generate produces a unique room code, retrying on collision against
// existing family codes.
func Generate(db *gorm.DB) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := random()
		if err != nil {
			return "", err
		}

		var count int64
		if err := db.Model(&models.Family{}).Where("room_code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("room code lookup failed: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique room code after %d attempts", maxAttempts)
}

// Normalize uppercases and trims a user-typed code so lookups are
// case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func random() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("room code generation failed: %w", err)
	}
	var sb strings.Builder
	for _, b := range buf {
		sb.WriteByte(alphabet[int(b)%len(alphabet)])
	}
	return sb.String(), nil
}
