package service

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/aurahq/aura_service/internal/logger"
)

func testSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:        "smtp.example.com",
		Port:        587,
		Username:    "mailer",
		Password:    "secret",
		SenderName:  "IntraPersonaL",
		SenderEmail: "reports@example.com",
	}
}

func TestSendReport(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	svc := NewEmailService(testSMTPConfig(), logger.NewNop())
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	result := svc.SendReport("user@example.com", "Animal Farm", "strong recall", 85, "Very Good")
	if !result.Success {
		t.Fatalf("result = %+v", result)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotFrom != "reports@example.com" {
		t.Errorf("from = %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "user@example.com" {
		t.Errorf("to = %v", gotTo)
	}

	body := string(gotMsg)
	for _, want := range []string{
		`Analysis for "Animal Farm"`,
		">85<",
		">Very Good<",
		"strong recall",
		"Content-Type: text/html",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSendReportInvalidEmail(t *testing.T) {
	svc := NewEmailService(testSMTPConfig(), logger.NewNop())
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send called for invalid address")
		return nil
	}

	result := svc.SendReport("not-an-address", "1984", "report", 50, "Good")
	if result.Success {
		t.Fatal("invalid address accepted")
	}
}

func TestSendReportRelayFailureIsSoft(t *testing.T) {
	svc := NewEmailService(testSMTPConfig(), logger.NewNop())
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	result := svc.SendReport("user@example.com", "1984", "report", 50, "Good")
	if result.Success {
		t.Fatal("relay failure reported as success")
	}
	if result.Message == "" {
		t.Fatal("failure message empty")
	}
}

func TestSendReportUnconfigured(t *testing.T) {
	svc := NewEmailService(SMTPConfig{}, logger.NewNop())
	result := svc.SendReport("user@example.com", "1984", "report", 50, "Good")
	if result.Success {
		t.Fatal("unconfigured relay reported success")
	}
	if !strings.Contains(result.Message, "not configured") {
		t.Fatalf("message = %q", result.Message)
	}
}
