package services

import (
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier delivers one-time codes to a phone number. The registration
// flows keep working without one configured - the code is then only
// logged and echoed in the response (demo mode).
type Notifier interface {
	SendOTP(phone, code string) error
}

// SMSService sends OTP codes via Twilio SMS
type SMSService struct {
	client *twilio.RestClient
	from   string
}

// NewSMSService creates a new Twilio-backed notifier
func NewSMSService() (*SMSService, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &SMSService{
		client: client,
		from:   from,
	}, nil
}

// SendOTP sends the verification code as a plain SMS
func (s *SMSService) SendOTP(phone, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(phone)
	params.SetBody(fmt.Sprintf("Your CollegeCab verification code is %s. It expires in 5 minutes.", code))

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send OTP SMS: %v", err)
		return err
	}

	log.Printf("✅ OTP SMS sent! SID: %s", *resp.Sid)
	return nil
}
