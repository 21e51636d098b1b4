package utils

import (
	"bytes"
	"html/template"
	"io"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// BookingConfirmationData feeds the confirmation email template.
type BookingConfirmationData struct {
	BookingCode   string
	RouteName     string
	DepartureTime string
	Seats         string
	Passengers    string
	TotalAmount   float64
	PaymentMethod string
	DetailLink    string
}

var bookingConfirmationTmpl = template.Must(template.New("booking_confirmation").Parse(`
<h2>Booking confirmed</h2>
<p>Your booking <b>{{.BookingCode}}</b> has been recorded.</p>
<table>
  <tr><td>Route</td><td>{{.RouteName}}</td></tr>
  <tr><td>Departure</td><td>{{.DepartureTime}}</td></tr>
  <tr><td>Seats</td><td>{{.Seats}}</td></tr>
  <tr><td>Passengers</td><td>{{.Passengers}}</td></tr>
  <tr><td>Total</td><td>{{.TotalAmount}}</td></tr>
  <tr><td>Payment</td><td>{{.PaymentMethod}}</td></tr>
</table>
<p>Show this code at boarding:</p>
<img src="cid:booking-qr.png" alt="{{.BookingCode}}"/>
{{if .DetailLink}}<p><a href="{{.DetailLink}}">View booking</a></p>{{end}}
`))

// SendBookingConfirmationEmail sends the confirmation mail with an
// embedded boarding QR. Runs async so the booking response is not
// delayed by SMTP.
func SendBookingConfirmationEmail(to string, data BookingConfirmationData, qrPNG []byte) {
	go func() {
		var body bytes.Buffer
		if err := bookingConfirmationTmpl.Execute(&body, data); err != nil {
			log.Printf("failed to render confirmation email: %v", err)
			return
		}

		host := os.Getenv("SMTP_HOST")
		portStr := os.Getenv("SMTP_PORT")
		username := os.Getenv("SMTP_USERNAME")
		password := os.Getenv("SMTP_PASSWORD")
		from := os.Getenv("SMTP_FROM")

		port, _ := strconv.Atoi(portStr)

		m := gomail.NewMessage()
		m.SetHeader("From", from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", "Booking confirmation #"+data.BookingCode)
		m.SetBody("text/html", body.String())
		if len(qrPNG) > 0 {
			m.Embed("booking-qr.png", gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(qrPNG)
				return err
			}))
		}

		d := gomail.NewDialer(host, port, username, password)
		if err := d.DialAndSend(m); err != nil {
			log.Printf("failed to send confirmation email: %v", err)
		}
	}()
}
