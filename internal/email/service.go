package email

import (
	"fmt"
	"net/smtp"
)

// Sender delivers notification emails.
type Sender interface {
	SendOrderConfirmation(to string, order OrderSummary) error
	SendDeliveryNotice(to string, order OrderSummary) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	host     string
	port     string
	from     string
	sendMail sendMailFunc
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host:     host,
		port:     port,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to string, order OrderSummary) error {
	subject := fmt.Sprintf("Order confirmation (order %s)", shortID(order.OrderID))
	return s.send(to, subject, BuildOrderConfirmationBody(order))
}

// SendDeliveryNotice tells the customer their order has been delivered.
func (s *Service) SendDeliveryNotice(to string, order OrderSummary) error {
	subject := fmt.Sprintf("Your order %s has been delivered", shortID(order.OrderID))
	return s.send(to, subject, BuildDeliveryNoticeBody(order))
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.sendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}
