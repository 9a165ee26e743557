package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/wolfman30/salon-concierge/internal/bookings"
	appconfig "github.com/wolfman30/salon-concierge/internal/config"
	"github.com/wolfman30/salon-concierge/internal/notify"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

// BuildEmailSender picks the provider named by EMAIL_PROVIDER. It returns nil
// when email is disabled or misconfigured.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if s == nil {
			logger.Warn("EMAIL_PROVIDER=sendgrid but SENDGRID_API_KEY is empty; email disabled")
			return nil
		}
		return s
	case "ses":
		if awsCfg == nil {
			logger.Warn("EMAIL_PROVIDER=ses but no AWS config; email disabled")
			return nil
		}
		return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
	case "stub":
		return notify.NewStubEmailSender(logger)
	default:
		return nil
	}
}

// BuildBookingNotifier returns a nil interface, not a typed nil, when the
// salon has no notification address.
func BuildBookingNotifier(cfg *appconfig.Config, sender notify.EmailSender, logger *logging.Logger) bookings.Notifier {
	n := notify.NewBookingNotifier(sender, cfg.SalonNotifyEmail, logger)
	if n == nil {
		return nil
	}
	return n
}
