package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/notify"
	"gym_club_backend/internal/repositories"
	"gym_club_backend/pkg/utils"
)

// bulkBatchSize is how many recipients are sent concurrently by SendBulkEmail.
const bulkBatchSize = 50

// --- Data Transfer Objects (DTOs) ---

type SendEmailRequest struct {
	To           string            `json:"to" binding:"required,email"`
	Subject      string            `json:"subject"`
	Content      string            `json:"content"`
	TemplateID   *string           `json:"template_id"`
	Variables    map[string]string `json:"variables"`
	UserID       *string           `json:"user_id"`
	MembershipID *string           `json:"membership_id"`
}

type SendWhatsAppRequest struct {
	To           string            `json:"to" binding:"required"`
	Content      string            `json:"content"`
	TemplateID   *string           `json:"template_id"`
	Variables    map[string]string `json:"variables"`
	UserID       *string           `json:"user_id"`
	MembershipID *string           `json:"membership_id"`
}

type BulkEmailRequest struct {
	Recipients []string `json:"recipients" binding:"required,min=1,dive,email"`
	Subject    string   `json:"subject" binding:"required"`
	Content    string   `json:"content" binding:"required"`
}

type BulkEmailResult struct {
	Success bool `json:"success"`
	Total   int  `json:"total"`
	Sent    int  `json:"sent"`
	Failed  int  `json:"failed"`
}

type CreateTemplateRequest struct {
	Name                 string   `json:"name" binding:"required"`
	Description          *string  `json:"description"`
	Type                 string   `json:"type" binding:"required,oneof=EMAIL WHATSAPP SMS PUSH"`
	Content              string   `json:"content" binding:"required"`
	Variables            []string `json:"variables"`
	Subject              *string  `json:"subject"`
	IsDefault            bool     `json:"is_default"`
	WhatsAppTemplateName *string  `json:"whatsapp_template_name"`
}

type UpdateTemplateRequest struct {
	Name                 *string  `json:"name"`
	Description          *string  `json:"description"`
	Content              *string  `json:"content"`
	Variables            []string `json:"variables"`
	Subject              *string  `json:"subject"`
	IsDefault            *bool    `json:"is_default"`
	WhatsAppTemplateName *string  `json:"whatsapp_template_name"`
}

// NotificationService sends messages and keeps their delivery log.
// Provider failures never surface as errors: the returned record carries
// status FAILED and the provider message instead.
type NotificationService interface {
	SendEmail(req SendEmailRequest) (*models.Notification, error)
	SendWhatsApp(req SendWhatsAppRequest) (*models.Notification, error)
	SendMembershipExpiration(membership *models.Membership) error
	SendMembershipRenewal(membership *models.Membership) error
	SendExpirationReminder(membership *models.Membership, daysRemaining int) error
	SendBulkEmail(req BulkEmailRequest) (*BulkEmailResult, error)

	CreateTemplate(req CreateTemplateRequest) (*models.NotificationTemplate, error)
	FindTemplates(templateType string) ([]models.NotificationTemplate, error)
	FindTemplate(id string) (*models.NotificationTemplate, error)
	UpdateTemplate(id string, req UpdateTemplateRequest) (*models.NotificationTemplate, error)
	RemoveTemplate(id string) error

	FindLogs(filters models.NotificationFilters) ([]models.Notification, int, error)
	FindLog(id string) (*models.Notification, error)
}

type notificationService struct {
	notifications repositories.NotificationRepository
	templates     repositories.TemplateRepository
	users         repositories.UserRepository
	mailer        notify.EmailSender
	whatsapp      notify.WhatsAppSender
	countryCode   string
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(store *repositories.Store, mailer notify.EmailSender, whatsapp notify.WhatsAppSender, countryCode string) NotificationService {
	if countryCode == "" {
		countryCode = "54"
	}
	return &notificationService{
		notifications: store.Notifications,
		templates:     store.Templates,
		users:         store.Users,
		mailer:        mailer,
		whatsapp:      whatsapp,
		countryCode:   strings.TrimPrefix(countryCode, "+"),
	}
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// RenderTemplate substitutes {{name}} placeholders. Unknown names are left as is.
func RenderTemplate(content string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(content, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// templateVariables lists placeholder names in order of first appearance.
func templateVariables(content string) []string {
	seen := map[string]bool{}
	vars := []string{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	return vars
}

// NormalizePhone converts a local number into the digits-only international
// form the WhatsApp provider expects.
func NormalizePhone(phone, countryCode string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "0"):
		return countryCode + digits[1:]
	case strings.HasPrefix(digits, "15"):
		return countryCode + "9" + digits[2:]
	case strings.HasPrefix(digits, countryCode):
		return digits
	default:
		return countryCode + digits
	}
}

// deliver persists a PENDING record, calls send and records the outcome.
func (s *notificationService) deliver(n *models.Notification, send func() error) (*models.Notification, error) {
	n.Status = models.NotificationPending
	if err := s.notifications.Create(n); err != nil {
		return nil, upstream(err, "Error al registrar la notificación")
	}

	status, msg := models.NotificationSent, (*string)(nil)
	if err := send(); err != nil {
		status = models.NotificationFailed
		text := err.Error()
		if errors.Is(err, notify.ErrNotConfigured) {
			text = "Proveedor no configurado: " + text
		}
		msg = &text
		utils.LogWarn(err, "notification delivery failed", map[string]interface{}{
			"notification_id": n.ID,
			"type":            n.Type,
			"recipient":       n.Recipient,
		})
	}

	if err := s.notifications.UpdateStatus(n.ID, status, msg); err != nil {
		return nil, upstream(err, "Error al actualizar la notificación")
	}
	n.Status = status
	n.ErrorMessage = msg
	return n, nil
}

func (s *notificationService) resolveTemplate(id *string) (*models.NotificationTemplate, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	tpl, err := s.templates.FindByID(*id)
	if err != nil {
		return nil, notFoundOr(err, "Plantilla no encontrada", "Error al obtener la plantilla")
	}
	return tpl, nil
}

func (s *notificationService) SendEmail(req SendEmailRequest) (*models.Notification, error) {
	tpl, err := s.resolveTemplate(req.TemplateID)
	if err != nil {
		return nil, err
	}

	subject, content := req.Subject, req.Content
	if tpl != nil {
		content = tpl.Content
		if subject == "" && tpl.Subject != nil {
			subject = *tpl.Subject
		}
	}
	content = RenderTemplate(content, req.Variables)
	subject = RenderTemplate(subject, req.Variables)
	if strings.TrimSpace(content) == "" {
		return nil, newError(ErrValidation, "El contenido del mensaje es obligatorio")
	}

	n := &models.Notification{
		Type:         models.NotificationEmail,
		Recipient:    req.To,
		Subject:      utils.NewNullString(subject),
		Content:      content,
		UserID:       req.UserID,
		MembershipID: req.MembershipID,
		TemplateID:   req.TemplateID,
	}
	return s.deliver(n, func() error {
		return s.mailer.SendEmail(req.To, subject, content)
	})
}

func (s *notificationService) SendWhatsApp(req SendWhatsAppRequest) (*models.Notification, error) {
	tpl, err := s.resolveTemplate(req.TemplateID)
	if err != nil {
		return nil, err
	}

	content := req.Content
	msg := notify.WhatsAppMessage{}
	if tpl != nil {
		content = tpl.Content
		if tpl.WhatsAppTemplateName != nil {
			msg.ContentSID = *tpl.WhatsAppTemplateName
			msg.ContentVariables = req.Variables
		}
	}
	content = RenderTemplate(content, req.Variables)
	if strings.TrimSpace(content) == "" && msg.ContentSID == "" {
		return nil, newError(ErrValidation, "El contenido del mensaje es obligatorio")
	}

	phone := NormalizePhone(req.To, s.countryCode)
	if phone == "" {
		return nil, newError(ErrValidation, "Número de teléfono inválido")
	}
	msg.To = phone
	msg.Body = content

	n := &models.Notification{
		Type:         models.NotificationWhatsApp,
		Recipient:    phone,
		Content:      content,
		UserID:       req.UserID,
		MembershipID: req.MembershipID,
		TemplateID:   req.TemplateID,
	}
	return s.deliver(n, func() error {
		return s.whatsapp.SendWhatsApp(msg)
	})
}

// membershipEvent describes one of the automatic membership messages.
type membershipEvent struct {
	keywords        []string
	fallbackSubject string
	fallbackBody    string
}

var (
	expirationEvent = membershipEvent{
		keywords:        []string{"expiracion", "vencimiento"},
		fallbackSubject: "Tu membresía ha expirado",
		fallbackBody:    "Hola {{nombre}}, tu membresía {{tipo_membresia}} expiró el {{fecha_vencimiento}}. Acercate al gimnasio para renovarla.",
	}
	renewalEvent = membershipEvent{
		keywords:        []string{"renovacion"},
		fallbackSubject: "Tu membresía fue renovada",
		fallbackBody:    "Hola {{nombre}}, tu membresía {{tipo_membresia}} fue renovada hasta el {{fecha_vencimiento}}. ¡Gracias por seguir entrenando con nosotros!",
	}
	reminderEvent = membershipEvent{
		keywords:        []string{"recordatorio", "por-vencer", "expiracion"},
		fallbackSubject: "Tu membresía está por vencer",
		fallbackBody:    "Hola {{nombre}}, tu membresía {{tipo_membresia}} vence en {{dias_restantes}} días ({{fecha_vencimiento}}).",
	}
)

// defaultTemplate picks the first default template of the type whose
// slugified name contains one of the event keywords.
func (s *notificationService) defaultTemplate(templateType string, ev membershipEvent) *models.NotificationTemplate {
	defaults, err := s.templates.FindDefaults(templateType)
	if err != nil {
		utils.LogWarn(err, "could not load default templates", map[string]interface{}{"type": templateType})
		return nil
	}
	for i := range defaults {
		name := utils.Slugify(defaults[i].Name)
		for _, kw := range ev.keywords {
			if strings.Contains(name, kw) {
				return &defaults[i]
			}
		}
	}
	return nil
}

func membershipVariables(user *models.User, m *models.Membership, daysRemaining int) map[string]string {
	return map[string]string{
		"nombre":            user.FirstName,
		"apellido":          user.LastName,
		"email":             user.Email,
		"tipo_membresia":    m.Type,
		"fecha_inicio":      m.StartDate.Format(dateLayout),
		"fecha_vencimiento": m.EndDate.Format(dateLayout),
		"dias_restantes":    fmt.Sprintf("%d", daysRemaining),
		"precio":            fmt.Sprintf("%.2f", m.Price),
	}
}

// sendMembershipEvent emails the member always and sends WhatsApp only when
// the member has a phone and a matching default WhatsApp template exists.
func (s *notificationService) sendMembershipEvent(m *models.Membership, ev membershipEvent, daysRemaining int) error {
	user, err := s.users.FindByID(m.UserID)
	if err != nil {
		return notFoundOr(err, "Usuario no encontrado", "Error al obtener el usuario")
	}
	vars := membershipVariables(user, m, daysRemaining)

	emailReq := SendEmailRequest{
		To:           user.Email,
		Subject:      ev.fallbackSubject,
		Content:      ev.fallbackBody,
		Variables:    vars,
		UserID:       &user.ID,
		MembershipID: &m.ID,
	}
	if tpl := s.defaultTemplate(models.NotificationEmail, ev); tpl != nil {
		emailReq.TemplateID = &tpl.ID
		if tpl.Subject != nil {
			emailReq.Subject = ""
		}
	}
	var errs []error
	if _, err := s.SendEmail(emailReq); err != nil {
		errs = append(errs, err)
	}

	if user.Phone != nil && *user.Phone != "" {
		if tpl := s.defaultTemplate(models.NotificationWhatsApp, ev); tpl != nil {
			_, err := s.SendWhatsApp(SendWhatsAppRequest{
				To:           *user.Phone,
				TemplateID:   &tpl.ID,
				Variables:    vars,
				UserID:       &user.ID,
				MembershipID: &m.ID,
			})
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (s *notificationService) SendMembershipExpiration(m *models.Membership) error {
	return s.sendMembershipEvent(m, expirationEvent, 0)
}

func (s *notificationService) SendMembershipRenewal(m *models.Membership) error {
	return s.sendMembershipEvent(m, renewalEvent, 0)
}

func (s *notificationService) SendExpirationReminder(m *models.Membership, daysRemaining int) error {
	return s.sendMembershipEvent(m, reminderEvent, daysRemaining)
}

// SendBulkEmail sends in batches; the run succeeds when more than half of
// the recipients were delivered.
func (s *notificationService) SendBulkEmail(req BulkEmailRequest) (*BulkEmailResult, error) {
	result := &BulkEmailResult{Total: len(req.Recipients)}
	if result.Total == 0 {
		return nil, newError(ErrValidation, "Debe indicar al menos un destinatario")
	}

	var mu sync.Mutex
	for start := 0; start < len(req.Recipients); start += bulkBatchSize {
		end := start + bulkBatchSize
		if end > len(req.Recipients) {
			end = len(req.Recipients)
		}

		var wg sync.WaitGroup
		for _, to := range req.Recipients[start:end] {
			wg.Add(1)
			go func(to string) {
				defer wg.Done()
				n, err := s.SendEmail(SendEmailRequest{To: to, Subject: req.Subject, Content: req.Content})
				mu.Lock()
				defer mu.Unlock()
				if err != nil || n.Status != models.NotificationSent {
					result.Failed++
					return
				}
				result.Sent++
			}(to)
		}
		wg.Wait()
	}

	result.Success = result.Sent > result.Total/2
	utils.LogInfo("bulk email finished", map[string]interface{}{
		"total": result.Total, "sent": result.Sent, "failed": result.Failed,
	})
	return result, nil
}

// --- Templates ---

func (s *notificationService) CreateTemplate(req CreateTemplateRequest) (*models.NotificationTemplate, error) {
	tpl := &models.NotificationTemplate{
		Name:                 strings.TrimSpace(req.Name),
		Description:          req.Description,
		Type:                 req.Type,
		Content:              req.Content,
		Variables:            req.Variables,
		Subject:              req.Subject,
		IsDefault:            req.IsDefault,
		WhatsAppTemplateName: req.WhatsAppTemplateName,
	}
	if len(tpl.Variables) == 0 {
		tpl.Variables = templateVariables(tpl.Content)
	}
	// clear the previous default before writing, so a failure leaves at most one
	if tpl.IsDefault {
		if err := s.templates.UnsetDefaults(tpl.Type, ""); err != nil {
			return nil, upstream(err, "Error al actualizar las plantillas por defecto")
		}
	}
	if err := s.templates.Create(tpl); err != nil {
		return nil, upstream(err, "Error al crear la plantilla")
	}
	return tpl, nil
}

func (s *notificationService) FindTemplates(templateType string) ([]models.NotificationTemplate, error) {
	templates, err := s.templates.FindAll(templateType)
	if err != nil {
		return nil, upstream(err, "Error al obtener las plantillas")
	}
	return templates, nil
}

func (s *notificationService) FindTemplate(id string) (*models.NotificationTemplate, error) {
	tpl, err := s.templates.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Plantilla no encontrada", "Error al obtener la plantilla")
	}
	return tpl, nil
}

func (s *notificationService) UpdateTemplate(id string, req UpdateTemplateRequest) (*models.NotificationTemplate, error) {
	tpl, err := s.FindTemplate(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tpl.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		tpl.Description = req.Description
	}
	if req.Content != nil {
		tpl.Content = *req.Content
		if req.Variables == nil {
			tpl.Variables = templateVariables(tpl.Content)
		}
	}
	if req.Variables != nil {
		tpl.Variables = req.Variables
	}
	if req.Subject != nil {
		tpl.Subject = req.Subject
	}
	if req.IsDefault != nil {
		tpl.IsDefault = *req.IsDefault
	}
	if req.WhatsAppTemplateName != nil {
		tpl.WhatsAppTemplateName = req.WhatsAppTemplateName
	}

	if tpl.IsDefault {
		if err := s.templates.UnsetDefaults(tpl.Type, tpl.ID); err != nil {
			return nil, upstream(err, "Error al actualizar las plantillas por defecto")
		}
	}
	if err := s.templates.Update(tpl); err != nil {
		return nil, notFoundOr(err, "Plantilla no encontrada", "Error al actualizar la plantilla")
	}
	return tpl, nil
}

func (s *notificationService) RemoveTemplate(id string) error {
	if err := s.templates.Delete(id); err != nil {
		return notFoundOr(err, "Plantilla no encontrada", "Error al eliminar la plantilla")
	}
	return nil
}

// --- Logs ---

func (s *notificationService) FindLogs(filters models.NotificationFilters) ([]models.Notification, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	list, total, err := s.notifications.FindAll(filters)
	if err != nil {
		return nil, 0, upstream(err, "Error al obtener las notificaciones")
	}
	return list, total, nil
}

func (s *notificationService) FindLog(id string) (*models.Notification, error) {
	n, err := s.notifications.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Notificación no encontrada", "Error al obtener la notificación")
	}
	return n, nil
}
