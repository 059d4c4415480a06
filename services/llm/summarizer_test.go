// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeClient replays canned outputs and records every prompt.
type fakeClient struct {
	replies []string
	err     error
	prompts []string
}

func (f *fakeClient) Generate(_ context.Context, prompt string, _ GenerationParams) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "summary", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func TestSummarizer_ShortPromptPassesThrough(t *testing.T) {
	fake := &fakeClient{replies: []string{"  Looks fine overall.\n"}}
	summarizer := NewSummarizer(fake)

	got, err := summarizer.Summarize(context.Background(), "Review scored 9/10.")
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if got != "Looks fine overall." {
		t.Errorf("summary = %q, want trimmed reply", got)
	}
	if len(fake.prompts) != 1 {
		t.Fatalf("prompts = %d, want exactly one call", len(fake.prompts))
	}
	if fake.prompts[0] != "Review scored 9/10." {
		t.Errorf("prompt = %q, want unmodified input", fake.prompts[0])
	}
}

func TestSummarizer_LargePromptMapReduces(t *testing.T) {
	fake := &fakeClient{}
	summarizer := NewSummarizer(fake)

	large := strings.Repeat("+const value = compute(input)\n", 400)
	if len(large) <= summaryChunkSize {
		t.Fatalf("fixture too small: %d bytes", len(large))
	}

	got, err := summarizer.Summarize(context.Background(), large)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if got != "summary" {
		t.Errorf("summary = %q", got)
	}

	// At least two chunk passes plus the combining pass.
	if len(fake.prompts) < 3 {
		t.Fatalf("prompts = %d, want map and reduce calls", len(fake.prompts))
	}
	if !strings.Contains(fake.prompts[0], "part 1 of ") {
		t.Errorf("first prompt missing part header:\n%s", fake.prompts[0][:80])
	}
	last := fake.prompts[len(fake.prompts)-1]
	if !strings.Contains(last, "Combine these partial summaries") {
		t.Errorf("final prompt is not the reduce pass:\n%s", last)
	}
}

func TestSummarizer_PropagatesError(t *testing.T) {
	fake := &fakeClient{err: errors.New("connection refused")}
	summarizer := NewSummarizer(fake)

	if _, err := summarizer.Summarize(context.Background(), "short"); err == nil {
		t.Fatal("expected error from failing client")
	}
}

func TestSummarizer_NilClient(t *testing.T) {
	summarizer := NewSummarizer(nil)

	_, err := summarizer.Summarize(context.Background(), "anything")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
