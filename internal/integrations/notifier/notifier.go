// Package notifier отправляет лиду подтверждение бронирования с анкетой
// перед консультацией через SMTP-релей.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// TLS политики подключения к релею
const (
	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSNone          = "none"
)

const (
	defaultSubject    = "Your design consultation is scheduled"
	appointmentLayout = "Monday, January 2, 2006 at 3:04 PM MST"
)

// Config параметры SMTP
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Subject  string
	TLS      string
	Timeout  time.Duration
	Location *time.Location // часовой пояс времени в письме
}

// Sender отправляет собранные письма (mail.Client)
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// SMTPNotifier отправляет подтверждения бронирования
type SMTPNotifier struct {
	sender Sender
	cfg    Config
	logger Logger
}

// NewSMTPNotifier создает уведомитель с SMTP-клиентом go-mail
func NewSMTPNotifier(cfg Config, logger Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("%w: host and from are required", ErrInvalidConfig)
	}

	opts := make([]mail.Option, 0, 6)
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	switch cfg.TLS {
	case TLSMandatory, "":
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case TLSOpportunistic:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	case TLSNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		return nil, fmt.Errorf("%w: unknown tls policy %q", ErrInvalidConfig, cfg.TLS)
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return NewWithSender(client, cfg, logger), nil
}

// NewWithSender создает уведомитель с произвольным отправителем
func NewWithSender(sender Sender, cfg Config, logger Logger) *SMTPNotifier {
	if cfg.Subject == "" {
		cfg.Subject = defaultSubject
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &SMTPNotifier{sender: sender, cfg: cfg, logger: logger}
}

// BookingConfirmed отправляет лиду подтверждение консультации
func (n *SMTPNotifier) BookingConfirmed(ctx context.Context, lead *domain.Lead, slot *domain.Slot) error {
	msg, err := n.BuildMessage(lead, slot)
	if err != nil {
		return err
	}

	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		n.logger.Error("BookingConfirmed: failed to send to %s: %v", lead.Email, err)
		return fmt.Errorf("%w: %v", ErrSend, err)
	}

	n.logger.Info("BookingConfirmed: confirmation for slot id=%s sent to %s", slot.ID, lead.Email)
	return nil
}

// BuildMessage собирает письмо с HTML и текстовой частью
func (n *SMTPNotifier) BuildMessage(lead *domain.Lead, slot *domain.Slot) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := n.setFrom(msg); err != nil {
		return nil, fmt.Errorf("%w: from: %v", ErrBuildMessage, err)
	}
	if err := msg.To(lead.Email); err != nil {
		return nil, fmt.Errorf("%w: to: %v", ErrBuildMessage, err)
	}
	msg.Subject(n.cfg.Subject)
	msg.SetDate()
	msg.SetMessageID()

	data := confirmationData{
		Name:      lead.Name,
		When:      slot.WhenUTC.In(n.cfg.Location).Format(appointmentLayout),
		Service:   lead.Service,
		Questions: Questionnaire,
		Agenda:    agenda,
	}
	if err := msg.SetBodyTextTemplate(textTemplate, data); err != nil {
		return nil, fmt.Errorf("%w: text body: %v", ErrBuildMessage, err)
	}
	if err := msg.AddAlternativeHTMLTemplate(htmlTemplate, data); err != nil {
		return nil, fmt.Errorf("%w: html body: %v", ErrBuildMessage, err)
	}
	return msg, nil
}

func (n *SMTPNotifier) setFrom(msg *mail.Msg) error {
	if n.cfg.FromName != "" {
		return msg.FromFormat(n.cfg.FromName, n.cfg.From)
	}
	return msg.From(n.cfg.From)
}

// LogNotifier пишет подтверждение в лог, когда отправка писем выключена
type LogNotifier struct {
	logger Logger
}

// NewLogNotifier создает уведомитель без отправки писем
func NewLogNotifier(logger Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// BookingConfirmed только логирует бронирование
func (n *LogNotifier) BookingConfirmed(_ context.Context, lead *domain.Lead, slot *domain.Slot) error {
	n.logger.Info("BookingConfirmed: notifications disabled, slot id=%s at %s for lead %s",
		slot.ID, slot.WhenUTC.Format(time.RFC3339), lead.Email)
	return nil
}
