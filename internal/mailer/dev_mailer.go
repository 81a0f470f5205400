package mailer

import (
	"github.com/xdrive/xdrive-logistics/pkg/logger"
)

// DevMailer logs mail instead of sending it. Default in development.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendVerificationEmail(toEmail, verifyURL, token string) error {
	logger.Info("[DEV MAIL] verification email",
		"to", toEmail,
		"verify_url", verifyURL,
		"token", token,
	)
	return nil
}
