package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jan112121/attendance-backend/models"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	out := Render("Hello {{student_name}}, session {{session}} on {{date}}", map[string]string{
		"student_name": "Juan Dela Cruz",
		"session":      "morning",
		"date":         "2025-03-03",
	})
	assert.Equal(t, "Hello Juan Dela Cruz, session morning on 2025-03-03", out)
}

func TestRenderUnknownKeyIsEmpty(t *testing.T) {
	assert.Equal(t, "-", Render("{{missing}}-{{also_missing}}", nil))
}

func TestRenderTrimsKeyWhitespace(t *testing.T) {
	out := Render("{{ student_name }}", map[string]string{"student_name": "Maria"})
	assert.Equal(t, "Maria", out)
}

type fakeSender struct {
	to, subject, body string
	calls             int
}

func (s *fakeSender) Send(to, subject, body string) error {
	s.to, s.subject, s.body = to, subject, body
	s.calls++
	return nil
}

func newNotifyDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.EmailTemplate{}))
	return db
}

func TestSendTemplateRendersFromDB(t *testing.T) {
	db := newNotifyDB(t)
	require.NoError(t, db.Create(&models.EmailTemplate{
		Key:     "greeting",
		Title:   "Greeting",
		Subject: "Hi {{student_name}}",
		Body:    "<p>{{student_name}} / {{session}}</p>",
	}).Error)

	sender := &fakeSender{}
	svc := NewService(db, sender)

	err := svc.SendTemplate(context.Background(), "greeting", "parent@example.com", map[string]string{
		"student_name": "Juan",
		"session":      "morning",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "parent@example.com", sender.to)
	assert.Equal(t, "Hi Juan", sender.subject)
	assert.Equal(t, "<p>Juan / morning</p>", sender.body)
}

func TestSendTemplateMissingTemplate(t *testing.T) {
	db := newNotifyDB(t)
	sender := &fakeSender{}
	svc := NewService(db, sender)

	err := svc.SendTemplate(context.Background(), "nope", "parent@example.com", nil)
	assert.Error(t, err)
	assert.Zero(t, sender.calls)
}

func TestSendTemplateNoRecipient(t *testing.T) {
	db := newNotifyDB(t)
	sender := &fakeSender{}
	svc := NewService(db, sender)

	err := svc.SendTemplate(context.Background(), "greeting", "", nil)
	assert.Error(t, err)
	assert.Zero(t, sender.calls)
}
