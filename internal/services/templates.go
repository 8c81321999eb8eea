package services

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	testEmailSubject = "Test Email - US Visa Monitor"
	testEmailMessage = "This is a test email from your US Visa Appointment Monitor. If you received this, your email notifications are working correctly!"
	testTelegramText = "🧪 Test Message\n\nThis is a test message from your US Visa Appointment Monitor. If you received this, your Telegram notifications are working correctly!"
)

var emailTemplate = template.Must(template.New("email").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #1976D2; color: white; padding: 20px; text-align: center;">
    <h1 style="margin: 0;">🎉 US Visa Appointment Alert</h1>
  </div>
  <div style="padding: 20px; background-color: #f8f9fa;">
    <h2 style="color: #1976D2;">Appointment Available!</h2>
    <p style="font-size: 16px; line-height: 1.6;">{{.Message}}</p>
    <div style="background-color: #fff3cd; border: 1px solid #ffeaa7; padding: 15px; margin: 20px 0; border-radius: 5px;">
      <strong>⚠️ Important:</strong> Please verify appointment availability manually on the official website and book through legitimate channels only.
    </div>
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{.BookingURL}}" style="background-color: #1976D2; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Visit Official Website</a>
    </div>
    <p style="color: #666; font-size: 14px; margin-top: 30px;">
      This notification was sent by the US Visa Appointment Monitor.
      This tool is for assistance only and does not guarantee appointment availability.
    </p>
  </div>
</div>
`))

func renderEmail(message, bookingURL string) (string, error) {
	var buf bytes.Buffer

	err := emailTemplate.Execute(&buf, struct {
		Message    string
		BookingURL string
	}{message, bookingURL})

	if err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}

	return buf.String(), nil
}

// AvailabilityEmail builds the subject and body of the "slot found" email.
func AvailabilityEmail(visaType, embassy string) (string, string) {
	return "US Visa Appointment Available",
		fmt.Sprintf("An appointment slot has become available for %s visa at the %s. Please check the official website immediately to book your appointment.", visaType, embassy)
}

func AvailabilityTelegram(visaType, embassy string) string {
	return fmt.Sprintf("🎉 Appointment Available!\n\nAn appointment slot has become available for %s visa at the %s. Check the official website now!", visaType, embassy)
}
