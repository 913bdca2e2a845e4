package pattern

import (
	"errors"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		branch  string
		want    string
		wantOK  bool
	}{
		{"prefixed branch", "feature/ENG-123-fix-login", "ENG-123", true},
		{"lowercase normalized", "eng-123", "ENG-123", true},
		{"mixed case", "Fix/Eng-45-crash", "ENG-45", true},
		{"leftmost wins", "eng-1-and-abc-2", "ENG-1", true},
		{"no identifier", "main", "", false},
		{"digits only", "release-2024", "RELEASE-2024", true},
		{"empty", "", "", false},
		{"hyphen without digits", "feature/eng-", "", false},
	}

	g := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.Extract(tt.branch)
			if ok != tt.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.branch, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.branch, got, tt.want)
			}
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	g := Default()
	first, _ := g.Extract("feature/ENG-123-fix-login")
	for i := 0; i < 10; i++ {
		got, _ := g.Extract("feature/ENG-123-fix-login")
		if got != first {
			t.Fatalf("Extract not deterministic: %q != %q", got, first)
		}
	}
}

func TestCompile(t *testing.T) {
	t.Run("custom grammar", func(t *testing.T) {
		g, err := Compile(`PROJ_[0-9]+`)
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}

		got, ok := g.Extract("feature/proj_42-thing")
		if !ok || got != "PROJ_42" {
			t.Errorf("Extract = (%q, %v), want (\"PROJ_42\", true)", got, ok)
		}
	})

	t.Run("empty expression", func(t *testing.T) {
		_, err := Compile("  ")
		if !errors.Is(err, ErrBadGrammar) {
			t.Errorf("error = %v, want ErrBadGrammar", err)
		}
	})

	t.Run("invalid expression", func(t *testing.T) {
		_, err := Compile(`[unclosed`)
		if !errors.Is(err, ErrBadGrammar) {
			t.Errorf("error = %v, want ErrBadGrammar", err)
		}
	})
}

func TestExtractTicketID(t *testing.T) {
	got, ok := ExtractTicketID("fix/ENG-5-bug")
	if !ok || got != "ENG-5" {
		t.Errorf("ExtractTicketID = (%q, %v), want (\"ENG-5\", true)", got, ok)
	}
}

func TestNamer_ForTicket(t *testing.T) {
	tests := []struct {
		name     string
		ticketID string
		title    string
		want     string
	}{
		{"with title", "ENG-123", "Fix Login Flow", "feature/eng-123-fix-login-flow"},
		{"no title", "ENG-123", "", "feature/eng-123"},
		{"special characters", "ENG-7", "Handle $$$ & spaces!", "feature/eng-7-handle-spaces"},
	}

	namer := DefaultNamer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := namer.ForTicket(tt.ticketID, tt.title)
			if got != tt.want {
				t.Errorf("ForTicket(%q, %q) = %q, want %q", tt.ticketID, tt.title, got, tt.want)
			}
		})
	}
}

func TestNamer_ForTicket_MaxLength(t *testing.T) {
	namer := &Namer{TypePrefix: "feature", IncludeTitle: true, MaxLength: 30}

	got := namer.ForTicket("ENG-123", "a very long title that goes on and on forever")
	if len(got) > 30 {
		t.Errorf("branch name %q exceeds max length", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add User Authentication", "add-user-authentication"},
		{"under_scores", "under-scores"},
		{"--already--hyphenated--", "already-hyphenated"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanBranch(t *testing.T) {
	if got := CleanBranch("feature/eng--123-"); got != "feature/eng-123" {
		t.Errorf("CleanBranch = %q, want %q", got, "feature/eng-123")
	}
}
