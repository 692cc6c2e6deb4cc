package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/pkg/utils"

	"github.com/shopspring/decimal"
)

const dateLayout = "02 Jan 2006 15:04 MST"

type message struct {
	subject string
	plain   string
	html    string
	sms     string
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html><body>
<p>Hello {{.Name}},</p>
<p>{{.Intro}}</p>
<table>
{{range .Rows}}<tr><td>{{index . 0}}</td><td>{{index . 1}}</td></tr>
{{end}}</table>
<p>Thank you for renting with us.</p>
</body></html>`))

type emailView struct {
	Name  string
	Intro string
	Rows  [][2]string
}

func render(name, intro string, rows [][2]string) (string, string) {
	var plain bytes.Buffer
	fmt.Fprintf(&plain, "Hello %s,\n\n%s\n\n", name, intro)
	for _, r := range rows {
		fmt.Fprintf(&plain, "%s: %s\n", r[0], r[1])
	}
	plain.WriteString("\nThank you for renting with us.\n")

	var html bytes.Buffer
	if err := emailTemplate.Execute(&html, emailView{Name: name, Intro: intro, Rows: rows}); err != nil {
		return plain.String(), ""
	}
	return plain.String(), html.String()
}

func money(currency string, amount decimal.Decimal) string {
	return currency + " " + utils.RoundMoney(amount).StringFixed(2)
}

func confirmationMessage(b *domain.Booking, c *domain.Customer, loc *time.Location, currency string) message {
	rows := [][2]string{
		{"Booking", b.ID},
		{"Pickup", b.StartDate.In(loc).Format(dateLayout)},
		{"Return", b.EndDate.In(loc).Format(dateLayout)},
		{"Pickup location", b.PickupLocation},
		{"Total", money(currency, b.TotalAmount)},
		{"Payment", string(b.PaymentMethod) + " (" + string(b.PaymentStatus) + ")"},
	}
	plain, html := render(c.Name, "Your car rental booking is confirmed.", rows)

	return message{
		subject: "Booking confirmed - " + b.ID,
		plain:   plain,
		html:    html,
		sms: fmt.Sprintf("Booking %s confirmed. Pickup %s. Total %s.",
			b.ID, b.StartDate.In(loc).Format("02/01 15:04"), money(currency, b.TotalAmount)),
	}
}

func receiptMessage(b *domain.Booking, c *domain.Customer, loc *time.Location, currency string) message {
	returned := ""
	if b.ActualReturnAt != nil {
		returned = b.ActualReturnAt.In(loc).Format(dateLayout)
	}

	rows := [][2]string{
		{"Receipt", b.ReceiptNumber},
		{"Booking", b.ID},
		{"Returned", returned},
		{"Rental total", money(currency, b.TotalAmount)},
	}
	if b.PenaltyAmount.IsPositive() {
		rows = append(rows, [2]string{"Late return penalty", money(currency, b.PenaltyAmount)})
	}
	rows = append(rows, [2]string{"Amount paid", money(currency, b.AmountPaid)})

	plain, html := render(c.Name, "Thank you for returning your rental car. Here is your receipt.", rows)

	return message{
		subject: "Receipt " + b.ReceiptNumber,
		plain:   plain,
		html:    html,
		sms: fmt.Sprintf("Receipt %s for booking %s. Amount paid %s.",
			b.ReceiptNumber, b.ID, money(currency, b.AmountPaid)),
	}
}

func overdueSMS(b *domain.Booking, p domain.PenaltyCalculation, loc *time.Location, currency string) string {
	return fmt.Sprintf("Booking %s was due back %s. Late charges so far: %s. Please return the car as soon as possible.",
		b.ID, b.EndDate.In(loc).Format("02/01 15:04"), money(currency, p.TotalAmount))
}
