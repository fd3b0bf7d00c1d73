// Package notify sends guardian emails rendered from DB-stored templates.
// Delivery is best-effort: callers log failures and never roll back
// attendance state over them.
package notify

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/jan112121/attendance-backend/models"
)

// Sender is the delivery transport. Production uses SMTP; dev and tests
// swap in LogSender or a capture fake.
type Sender interface {
	Send(to, subject, body string) error
}

var placeholderRE = regexp.MustCompile(`{{(.*?)}}`)

// Render substitutes {{key}} placeholders from data. Unknown keys render
// empty, same as the template editor preview.
func Render(tpl string, data map[string]string) string {
	return placeholderRE.ReplaceAllStringFunc(tpl, func(m string) string {
		key := placeholderRE.FindStringSubmatch(m)[1]
		return data[strings.TrimSpace(key)]
	})
}

type Service struct {
	db     *gorm.DB
	sender Sender
}

func NewService(db *gorm.DB, sender Sender) *Service {
	return &Service{db: db, sender: sender}
}

// SendTemplate loads the template by key, renders subject and body, and
// hands the result to the transport.
func (s *Service) SendTemplate(ctx context.Context, key, to string, data map[string]string) error {
	if to == "" {
		return fmt.Errorf("no recipient for template %s", key)
	}
	var tpl models.EmailTemplate
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&tpl).Error; err != nil {
		return fmt.Errorf("email template %s: %w", key, err)
	}
	return s.sender.Send(to, Render(tpl.Subject, data), Render(tpl.Body, data))
}

// LogSender is the dev transport: it only logs what would have been sent.
type LogSender struct{}

func (LogSender) Send(to, subject, _ string) error {
	log.Printf("[notify] (dev) to=%s subject=%q", to, subject)
	return nil
}
