package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"github.com/aws/aws-sdk-go/aws"         //nolint:staticcheck // TODO: Migrate to aws-sdk-go-v2
	"github.com/aws/aws-sdk-go/aws/session" //nolint:staticcheck
	"github.com/aws/aws-sdk-go/service/ses" //nolint:staticcheck

	"github.com/Conceptual-Machines/prdgen-api/internal/config"
)

// ErrSharingNotConfigured is returned when no sender address is configured
var ErrSharingNotConfigured = errors.New("email sharing not configured. Set the EMAIL_FROM environment variable.")

// EmailService delivers generated documents over AWS SES
type EmailService struct {
	cfg       *config.Config
	sesClient *ses.SES
}

// NewEmailService creates the SES-backed document mailer
func NewEmailService(cfg *config.Config) *EmailService {
	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWSRegion),
	}))

	return &EmailService{
		cfg:       cfg,
		sesClient: ses.New(sess),
	}
}

var documentEmail = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
</head>
<body style="font-family: 'Segoe UI', Helvetica, Arial, sans-serif; max-width: 720px; margin: 0 auto; padding: 24px; color: #24292f;">
    <div style="border-bottom: 3px solid #0b5fff; padding-bottom: 12px; margin-bottom: 24px;">
        <h1 style="margin: 0; font-size: 22px;">📄 {{.Title}}</h1>
    </div>
    <div style="line-height: 1.6;">
        {{.DocumentHTML}}
    </div>
    <div style="margin-top: 32px; border-top: 1px solid #d0d7de; padding-top: 12px; color: #6e7781; font-size: 12px;">
        Shared from PRD Generator.
    </div>
</body>
</html>`))

// SendDocumentEmail renders the document to HTML and mails it to one
// recipient. The plain text part carries the raw markdown.
func (s *EmailService) SendDocumentEmail(to, productName, document string) error {
	if s.cfg.EmailFrom == "" {
		return ErrSharingNotConfigured
	}

	title := ExtractTitle(document, productName)
	if title == "" {
		title = "Untitled Document"
	}

	docHTML, err := RenderMarkdown(document)
	if err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}

	var htmlBody bytes.Buffer
	err = documentEmail.Execute(&htmlBody, map[string]interface{}{
		"Title":        title,
		"DocumentHTML": template.HTML(docHTML), //nolint:gosec // rendered from our own markdown output
	})
	if err != nil {
		return err
	}

	_, err = s.sesClient.SendEmail(&ses.SendEmailInput{
		Source: aws.String(s.cfg.EmailFrom),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(to)},
		},
		Message: &ses.Message{
			Subject: sesContent("PRD: " + title),
			Body: &ses.Body{
				Html: sesContent(htmlBody.String()),
				Text: sesContent(document),
			},
		},
	})
	return err
}

func sesContent(data string) *ses.Content {
	return &ses.Content{
		Data:    aws.String(data),
		Charset: aws.String("UTF-8"),
	}
}
