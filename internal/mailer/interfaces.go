package mailer

// Service sends transactional mail. Implementations must be safe for
// concurrent use.
type Service interface {
	SendVerificationEmail(toEmail, verifyURL, token string) error
}
