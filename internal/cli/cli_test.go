package cli

import (
	"testing"

	"github.com/ebuilder/internal/config"
	"github.com/ebuilder/internal/mail"
)

func TestMailSenderSelectsBackend(t *testing.T) {
	smtp := mailSender(config.EmailConfig{Backend: config.EmailBackendSMTP, Host: "mail.example.com", Port: 2525, HostUser: "u", HostPassword: "p"})
	sender, ok := smtp.(mail.SMTPSender)
	if !ok {
		t.Fatalf("expected SMTPSender, got %T", smtp)
	}
	if sender.Host != "mail.example.com" || sender.Port != 2525 || sender.Username != "u" {
		t.Fatalf("unexpected smtp sender %+v", sender)
	}

	if _, ok := mailSender(config.EmailConfig{Backend: config.EmailBackendConsole}).(mail.ConsoleSender); !ok {
		t.Fatal("expected ConsoleSender for console backend")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := map[string]bool{"serve": false, "migrate": false, "createsuperuser": false, "seed": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("expected %s subcommand", name)
		}
	}
}
