package service

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"coachpath/internal/models"
)

// sesAPI is the part of the SES client used to send mail
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		if debug {
			log.Println("[DEBUG] Email service will skip sending all emails")
		}
		return &EmailService{
			enabled:    false,
			appBaseURL: appBaseURL,
			debug:      debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From: %s <%s>", fromName, fromEmail)
		log.Printf("[DEBUG] App Base URL: %s", appBaseURL)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return newEmailService(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, debug), nil
}

func newEmailService(client sesAPI, fromEmail, fromName, appBaseURL string, debug bool) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

const emailStyle = `
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2f855a; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2f855a; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }`

// SendWelcomeEmail greets a newly registered user
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Bienvenue sur Coachpath"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>%s</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Bienvenue !</h1>
		</div>
		<div class="content">
			<p>Bonjour %s,</p>
			<p>Votre compte est prêt. Répondez à trois questions et nous vous proposerons un parcours de quatre jours : BOOST pour retrouver de l'énergie ou RELAX pour souffler.</p>
			<p style="text-align: center;">
				<a href="%s/quiz" class="button">Commencer le quiz</a>
			</p>
		</div>
		<div class="footer">
			<p>Coachpath</p>
		</div>
	</div>
</body>
</html>
`, emailStyle, html.EscapeString(toName), s.appBaseURL)

	textBody := fmt.Sprintf(`Bonjour %s,

Votre compte est prêt. Répondez à trois questions et nous vous proposerons un parcours de quatre jours : BOOST pour retrouver de l'énergie ou RELAX pour souffler.

Commencer le quiz : %s/quiz
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendReminderEmail sends the daily nudge for the lesson of the given day
func (s *EmailService) SendReminderEmail(ctx context.Context, toEmail, toName string, lesson models.Lesson, day int, unsubscribeURL string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): reminder to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("Jour %d : %s", day, lesson.Title)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>%s</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Jour %d sur %d</h1>
		</div>
		<div class="content">
			<p>Bonjour %s,</p>
			<p>Votre séance du jour vous attend : <strong>%s</strong>.</p>
			<p><em>%s</em></p>
			<p style="text-align: center;">
				<a href="%s/lesson" class="button">Voir la séance</a>
			</p>
		</div>
		<div class="footer">
			<p><a href="%s">Ne plus recevoir de rappels</a></p>
		</div>
	</div>
</body>
</html>
`, emailStyle, day, models.ProgramDays, html.EscapeString(toName), html.EscapeString(lesson.Title),
		html.EscapeString(lesson.Objective), s.appBaseURL, html.EscapeString(unsubscribeURL))

	textBody := fmt.Sprintf(`Bonjour %s,

Votre séance du jour %d vous attend : %s.
%s

Voir la séance : %s/lesson

Ne plus recevoir de rappels : %s
`, toName, day, lesson.Title, lesson.Objective, s.appBaseURL, unsubscribeURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if s.debug {
		log.Printf("[DEBUG] sendEmail called: to=%s, subject=%s", toEmail, subject)
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
