package email

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService() (*Service, *[]sentMail) {
	var sent []sentMail
	svc := NewService("smtp.local", "1025", "orders@tastesphere.test")
	svc.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return svc, &sent
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{12.5, "12.50"},
		{999.999, "1,000.00"},
		{1234567.891, "1,234,567.89"},
		{-4500, "-4,500.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.in))
		})
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "12345678", ShortID("1234567890abcdef"))
}

func TestService_SendOrderConfirmation(t *testing.T) {
	svc, sent := newTestService()

	err := svc.SendOrderConfirmation("asha@example.com", "9f8e7d6c5b4a", 290, []OrderItem{
		{DishID: "d1", Name: "Masala Dosa", Quantity: 2, Price: 120},
		{DishID: "d2", Quantity: 1, Price: 50},
	})

	require.NoError(t, err)
	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "smtp.local:1025", mail.addr)
	assert.Equal(t, []string{"asha@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Order confirmed (order #9f8e7d6c)")
	assert.Contains(t, mail.msg, "Masala Dosa")
	assert.Contains(t, mail.msg, "₹240.00")
	assert.Contains(t, mail.msg, ">d2<")
	assert.Contains(t, mail.msg, "₹290.00")
}

func TestService_SendStatusUpdate(t *testing.T) {
	svc, sent := newTestService()

	err := svc.SendStatusUpdate("asha@example.com", StatusUpdate{
		OrderID:         "order-1",
		Status:          "preparing",
		Headline:        "Your food is being prepared",
		Detail:          "The kitchen has started on your order.",
		Note:            "<extra spicy>",
		ProgressPercent: 50,
	})

	require.NoError(t, err)
	msg := (*sent)[0].msg
	assert.Contains(t, msg, "Subject: Your food is being prepared (order #order-1)")
	assert.Contains(t, msg, "width: 50%")
	assert.Contains(t, msg, "&lt;extra spicy&gt;")
	assert.NotContains(t, msg, "<extra spicy>")
}

func TestService_SendError(t *testing.T) {
	svc, _ := newTestService()
	svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := svc.SendStatusUpdate("asha@example.com", StatusUpdate{OrderID: "o1", Headline: "x"})

	assert.ErrorContains(t, err, "connection refused")
}
