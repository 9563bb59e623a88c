package ports

import "context"

// EmailService abstracts outbound transactional mail.
type EmailService interface {
	SendVerificationEmail(ctx context.Context, email, username, token string) error
}
