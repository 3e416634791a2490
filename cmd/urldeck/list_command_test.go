package main

import (
	"testing"

	"urldeck/internal/testsupport"
)

func TestListShowsEntries(t *testing.T) {
	env := setupCLITestEnv(t)
	writeListFile(t, env.cfg.Paths.ListFile, "Example\nhttps://example.com:8443/page\n\nBroken\nhttp://\n")

	out, _, err := runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "Example")
	requireContains(t, out, "example.com:8443")
	requireContains(t, out, "Broken")
	requireContains(t, out, "2 entries in "+env.cfg.Paths.ListFile)
}

func TestListMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"ls"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "No entries in "+env.cfg.Paths.ListFile)
}

func TestCandidatesCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithLookupService("https://lookup.test/s2"))

	out, _, err := runCLI(t, []string{"candidates", "https://example.com:8443/x?y=1"}, env.configPath)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	requireContains(t, out, "Host: example.com:8443")
	requireContains(t, out, "https://example.com:8443/favicon.ico")
	requireContains(t, out, "https://example.com:8443/favicon.png")
	requireContains(t, out, "https://lookup.test/s2?domain=example.com&sz=32")

	out, _, err = runCLI(t, []string{"candidates", "http://"}, env.configPath)
	if err != nil {
		t.Fatalf("candidates malformed: %v", err)
	}
	requireContains(t, out, "No candidates")
}
