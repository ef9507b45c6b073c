package services

import (
	"fmt"
	"testing"
	"time"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/notify"
	"gym_club_backend/internal/repositories"
	"gym_club_backend/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out := RenderTemplate("Hola {{nombre}}, vence el {{ fecha_vencimiento }}. {{desconocido}}", map[string]string{
		"nombre":            "Ana",
		"fecha_vencimiento": "2025-01-31",
	})
	assert.Equal(t, "Hola Ana, vence el 2025-01-31. {{desconocido}}", out)
	assert.Equal(t, []string{"nombre", "precio"}, templateVariables("{{nombre}} {{precio}} {{nombre}}"))
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"011 4555-1234":    "541145551234",
		"15 4555 1234":     "54945551234",
		"+54 9 11 4555 12": "54911455512",
		"4555-1234":        "5445551234",
		"":                 "",
		"abc":              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in, "54"), in)
	}
}

func TestSendEmailWithoutProviderIsLoggedAsFailed(t *testing.T) {
	store := memory.NewStore()
	mailer := notify.NewSMTPMailer("", "", "", "", "")
	svc := NewNotificationService(store, mailer, &fakeWhatsApp{}, "54")

	n, err := svc.SendEmail(SendEmailRequest{To: "ana@example.com", Subject: "Hola", Content: "Bienvenida"})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationFailed, n.Status)
	require.NotNil(t, n.ErrorMessage)
	assert.Contains(t, *n.ErrorMessage, "Proveedor no configurado")

	stored, err := svc.FindLog(n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationFailed, stored.Status)

	_, err = svc.FindLog("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendEmailRendersTemplate(t *testing.T) {
	store := memory.NewStore()
	mailer := &fakeMailer{}
	svc := NewNotificationService(store, mailer, &fakeWhatsApp{}, "54")

	subject := "Hola {{nombre}}"
	tpl, err := svc.CreateTemplate(CreateTemplateRequest{
		Name: "Bienvenida", Type: models.NotificationEmail, Content: "Bienvenida {{nombre}} {{apellido}}", Subject: &subject,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"nombre", "apellido"}, tpl.Variables)

	n, err := svc.SendEmail(SendEmailRequest{
		To: "ana@example.com", TemplateID: &tpl.ID, Variables: map[string]string{"nombre": "Ana", "apellido": "Pérez"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSent, n.Status)
	assert.Equal(t, "Bienvenida Ana Pérez", n.Content)
	require.NotNil(t, n.Subject)
	assert.Equal(t, "Hola Ana", *n.Subject)

	missing := "nope"
	_, err = svc.SendEmail(SendEmailRequest{To: "ana@example.com", TemplateID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SendEmail(SendEmailRequest{To: "ana@example.com"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSendWhatsAppNormalizesRecipient(t *testing.T) {
	store := memory.NewStore()
	wa := &fakeWhatsApp{}
	svc := NewNotificationService(store, &fakeMailer{}, wa, "+54")

	n, err := svc.SendWhatsApp(SendWhatsAppRequest{To: "011 4555-1234", Content: "Hola"})
	require.NoError(t, err)
	assert.Equal(t, "541145551234", n.Recipient)
	assert.Equal(t, models.NotificationSent, n.Status)
	require.Len(t, wa.sent, 1)
	assert.Equal(t, "541145551234", wa.sent[0].To)

	_, err = svc.SendWhatsApp(SendWhatsAppRequest{To: "sin numero", Content: "Hola"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBulkEmailMajorityRule(t *testing.T) {
	store := memory.NewStore()
	mailer := &fakeMailer{fail: map[string]bool{"c@example.com": true, "d@example.com": true}}
	svc := NewNotificationService(store, mailer, &fakeWhatsApp{}, "54")

	res, err := svc.SendBulkEmail(BulkEmailRequest{
		Recipients: []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"},
		Subject:    "Aviso",
		Content:    "Cerramos el feriado",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 2, res.Failed)
	assert.False(t, res.Success)

	recipients := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		recipients = append(recipients, fmt.Sprintf("socio%d@example.com", i))
	}
	res, err = svc.SendBulkEmail(BulkEmailRequest{Recipients: recipients, Subject: "Aviso", Content: "Hola"})
	require.NoError(t, err)
	assert.Equal(t, 120, res.Sent)
	assert.True(t, res.Success)

	_, total, err := svc.FindLogs(models.NotificationFilters{Status: models.NotificationFailed})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestDefaultTemplateIsUnique(t *testing.T) {
	svc := NewNotificationService(memory.NewStore(), &fakeMailer{}, &fakeWhatsApp{}, "54")

	first, err := svc.CreateTemplate(CreateTemplateRequest{Name: "Vencimiento A", Type: models.NotificationEmail, Content: "a", IsDefault: true})
	require.NoError(t, err)
	second, err := svc.CreateTemplate(CreateTemplateRequest{Name: "Vencimiento B", Type: models.NotificationEmail, Content: "b", IsDefault: true})
	require.NoError(t, err)
	wa, err := svc.CreateTemplate(CreateTemplateRequest{Name: "Vencimiento WA", Type: models.NotificationWhatsApp, Content: "c", IsDefault: true})
	require.NoError(t, err)

	got, err := svc.FindTemplate(first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)
	got, err = svc.FindTemplate(wa.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	yes := true
	_, err = svc.UpdateTemplate(first.ID, UpdateTemplateRequest{IsDefault: &yes})
	require.NoError(t, err)
	got, err = svc.FindTemplate(second.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	require.NoError(t, svc.RemoveTemplate(second.ID))
	assert.ErrorIs(t, svc.RemoveTemplate(second.ID), ErrNotFound)
}

// brokenDefaults fails every UnsetDefaults call.
type brokenDefaults struct {
	repositories.TemplateRepository
}

func (brokenDefaults) UnsetDefaults(templateType, exceptID string) error {
	return repositories.ErrDatabaseError
}

func TestDefaultTemplateFailureLeavesNoSecondDefault(t *testing.T) {
	store := memory.NewStore()
	healthy := NewNotificationService(store, &fakeMailer{}, &fakeWhatsApp{}, "54")
	current, err := healthy.CreateTemplate(CreateTemplateRequest{Name: "Vencimiento A", Type: models.NotificationEmail, Content: "a", IsDefault: true})
	require.NoError(t, err)
	other, err := healthy.CreateTemplate(CreateTemplateRequest{Name: "Vencimiento B", Type: models.NotificationEmail, Content: "b"})
	require.NoError(t, err)

	store.Templates = brokenDefaults{store.Templates}
	svc := NewNotificationService(store, &fakeMailer{}, &fakeWhatsApp{}, "54")

	_, err = svc.CreateTemplate(CreateTemplateRequest{Name: "Vencimiento C", Type: models.NotificationEmail, Content: "c", IsDefault: true})
	assert.ErrorIs(t, err, ErrUpstream)
	yes := true
	_, err = svc.UpdateTemplate(other.ID, UpdateTemplateRequest{IsDefault: &yes})
	assert.ErrorIs(t, err, ErrUpstream)

	templates, err := svc.FindTemplates(models.NotificationEmail)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	for _, tpl := range templates {
		assert.Equal(t, tpl.ID == current.ID, tpl.IsDefault, tpl.Name)
	}
}

func TestMembershipEventUsesDefaultTemplates(t *testing.T) {
	f := newFixture(t, time.Date(2025, 2, 15, 9, 0, 0, 0, time.UTC))
	phone := "15 4555 1234"
	u := &models.User{Email: "ana@example.com", FirstName: "Ana", LastName: "Pérez", Phone: &phone, Role: models.RoleUser}
	require.NoError(t, f.store.Users.Create(u))

	subject := "Expiró tu plan"
	_, err := f.notifications.CreateTemplate(CreateTemplateRequest{
		Name: "Expiración de membresía", Type: models.NotificationEmail, Subject: &subject,
		Content: "{{nombre}}: tu plan {{tipo_membresia}} venció el {{fecha_vencimiento}}", IsDefault: true,
	})
	require.NoError(t, err)
	sid := "HX123"
	_, err = f.notifications.CreateTemplate(CreateTemplateRequest{
		Name: "Vencimiento WhatsApp", Type: models.NotificationWhatsApp, WhatsAppTemplateName: &sid,
		Content: "{{nombre}}, tu membresía venció", IsDefault: true,
	})
	require.NoError(t, err)

	m, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipMonthly, StartDate: "2025-01-01"})
	require.NoError(t, err)
	require.NoError(t, f.notifications.SendMembershipExpiration(m))

	logs, total, err := f.notifications.FindLogs(models.NotificationFilters{UserID: u.ID})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	byType := map[string]models.Notification{}
	for _, n := range logs {
		byType[n.Type] = n
	}
	email := byType[models.NotificationEmail]
	assert.Equal(t, "Ana: tu plan monthly venció el 2025-01-31", email.Content)
	require.NotNil(t, email.Subject)
	assert.Equal(t, subject, *email.Subject)

	whatsapp := byType[models.NotificationWhatsApp]
	assert.Equal(t, "54945551234", whatsapp.Recipient)
	require.Len(t, f.whatsapp.sent, 1)
	assert.Equal(t, "HX123", f.whatsapp.sent[0].ContentSID)
	assert.Equal(t, "Ana", f.whatsapp.sent[0].ContentVariables["nombre"])
}

func TestFindLogsPaging(t *testing.T) {
	svc := NewNotificationService(memory.NewStore(), &fakeMailer{}, &fakeWhatsApp{}, "54")
	for i := 0; i < 25; i++ {
		_, err := svc.SendEmail(SendEmailRequest{To: fmt.Sprintf("s%d@example.com", i), Content: "x"})
		require.NoError(t, err)
	}

	page, total, err := svc.FindLogs(models.NotificationFilters{})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, page, 20)

	page, _, err = svc.FindLogs(models.NotificationFilters{Page: 2, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, page, 5)
}
