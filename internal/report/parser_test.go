package report

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestMarkdownParser_PlainMarkdownWithoutSentinel(t *testing.T) {
	p := &MarkdownParser{}

	plainMarkdown := `# Some Document

This is just a regular Markdown file with no stride sentinel.
`
	_, err := p.Parse([]byte(plainMarkdown))
	if err == nil {
		t.Fatal("expected error for plain Markdown without sentinel, got nil")
	}
	if !strings.Contains(err.Error(), "not a valid stride report") {
		t.Errorf("expected error to contain 'not a valid stride report', got: %q", err.Error())
	}
}

func TestMarkdownParser_CorruptedBase64Payload(t *testing.T) {
	corrupted := versionSentinel + "\n" + dataPrefix + "!!!not-valid-base64!!!" + dataSuffix + "\n"
	if _, err := (&MarkdownParser{}).Parse([]byte(corrupted)); err == nil {
		t.Fatal("expected error for corrupted base64 payload, got nil")
	}
}

func TestMarkdownParser_MissingDataPayload(t *testing.T) {
	if _, err := (&MarkdownParser{}).Parse([]byte(versionSentinel + "\n# Run\n")); err == nil {
		t.Fatal("expected error for missing data payload, got nil")
	}
}

func TestMarkdownParser_UnterminatedPayload(t *testing.T) {
	doc := versionSentinel + "\n" + dataPrefix + "e30="
	if _, err := (&MarkdownParser{}).Parse([]byte(doc)); err == nil {
		t.Fatal("expected error for unterminated payload, got nil")
	}
}

func TestMarkdownParser_ValidBase64ButInvalidJSON(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("this is not json"))
	doc := versionSentinel + "\n" + dataPrefix + payload + dataSuffix + "\n"
	if _, err := (&MarkdownParser{}).Parse([]byte(doc)); err == nil {
		t.Fatal("expected error for invalid embedded JSON, got nil")
	}
}

func TestJSONParser_MalformedJSON(t *testing.T) {
	if _, err := (&JSONParser{}).Parse([]byte(`{"run": `)); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestParserForSniffsFormat(t *testing.T) {
	if _, ok := ParserFor([]byte("  {\"run\":{}}")).(*JSONParser); !ok {
		t.Error("JSON input should get a JSONParser")
	}
	if _, ok := ParserFor([]byte(versionSentinel)).(*MarkdownParser); !ok {
		t.Error("Markdown input should get a MarkdownParser")
	}
}
