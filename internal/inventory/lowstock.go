package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/saltyorg/partsroom/internal/database"
)

// ErrTextingDisabled is returned when no SMS gateway is configured
var ErrTextingDisabled = errors.New("sms gateway not configured")

var separator = strings.Repeat("-", 20)

// FormatLowStockMessage renders the text sent to users: a separator line,
// then one block per part, each closed by another separator.
func FormatLowStockMessage(parts []*database.Part) string {
	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		blocks = append(blocks, "Part Name: "+p.Name+" \n"+
			"Part Number: "+p.PartNumber+"\n"+
			"Part Store Name: "+p.PartStoreName+"\n"+
			"Current Amount: "+strconv.FormatInt(p.Amount, 10)+"\n"+
			"Part Threshold: "+strconv.FormatInt(p.LowThresh, 10)+"\n"+
			separator)
	}
	return separator + "\n" + strings.Join(blocks, "\n")
}

// TextingEnabled reports whether an SMS gateway is configured
func (s *Service) TextingEnabled() bool {
	return s.texter != nil
}

// SendLowStockText texts the current low-stock list to the user's phone.
// It returns true only when the gateway answered 200. Every attempt is
// written to the notification log.
func (s *Service) SendLowStockText(ctx context.Context, username string) (bool, error) {
	if s.texter == nil {
		return false, ErrTextingDisabled
	}

	entry := &database.NotificationLog{Username: username}
	defer func() {
		if err := s.db.LogNotification(entry); err != nil {
			log.Error().Err(err).Str("username", username).Msg("Failed to record notification attempt")
		}
	}()

	acct, err := s.db.GetAccountByUsername(username)
	if err != nil {
		entry.Status, entry.Error = database.NotificationFailed, err.Error()
		return false, err
	}
	if acct == nil {
		entry.Status, entry.Error = database.NotificationSkipped, "unknown username"
		log.Warn().Str("username", username).Msg("Low-stock text skipped: no such account")
		return false, nil
	}
	entry.PhoneNum = acct.PhoneNum

	parts, err := s.db.ListLowParts()
	if err != nil {
		entry.Status, entry.Error = database.NotificationFailed, err.Error()
		return false, err
	}
	entry.PartCount = len(parts)

	delivered, err := s.texter.SendText(ctx, "1"+acct.PhoneNum, FormatLowStockMessage(parts))
	if err != nil {
		entry.Status, entry.Error = database.NotificationFailed, err.Error()
		return false, fmt.Errorf("failed to send low-stock text: %w", err)
	}
	if !delivered {
		entry.Status, entry.Error = database.NotificationFailed, "gateway did not accept the message"
		log.Warn().Str("username", username).Msg("Low-stock text rejected by gateway")
		return false, nil
	}

	entry.Status = database.NotificationSent
	log.Info().Str("username", username).Int("parts", len(parts)).Msg("Low-stock text sent")
	s.publish(EventLowStockText, map[string]any{"username": username, "parts": len(parts)})
	return true, nil
}
