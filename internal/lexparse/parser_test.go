package lexparse

import "testing"

func TestTokenizeQuoting(t *testing.T) {
	toks, err := Tokenize(`echo 'literal $HOME' "esc \" q" end`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{"echo", "literal $HOME", `esc " q`, "end"}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Text != w {
			t.Errorf("token %d = %q, want %q", i, toks[i].Text, w)
		}
	}
	if toks[1].Quoting != SingleQuoted {
		t.Errorf("token 1 quoting = %v, want SingleQuoted", toks[1].Quoting)
	}
	if toks[2].Quoting != DoubleQuoted {
		t.Errorf("token 2 quoting = %v, want DoubleQuoted", toks[2].Quoting)
	}
}

func TestTokenizeComment(t *testing.T) {
	toks, err := Tokenize("echo hi # trailing comment")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2: %+v", len(toks), toks)
	}
}

func TestTokenizeOperators(t *testing.T) {
	toks, err := Tokenize("a|b<c>d>>e&")
	if err != nil {
		t.Fatal(err)
	}
	var ops []string
	for _, tk := range toks {
		if tk.IsOperator {
			ops = append(ops, tk.Text)
		}
	}
	want := []string{"|", "<", ">", ">>", "&"}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d = %q, want %q", i, ops[i], want[i])
		}
	}
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	if _, err := Tokenize(`echo 'unterminated`); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Tokenize(`echo "unterminated`); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseEmptyLine(t *testing.T) {
	p, err := Parse("   ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p != nil {
		t.Fatalf("Parse(whitespace) = %+v, want nil", p)
	}
}

func TestParsePipeline(t *testing.T) {
	p, err := Parse("echo a | cat | wc -l")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(p.Commands) != 3 {
		t.Fatalf("len(Commands) = %d, want 3", len(p.Commands))
	}
	if p.Background {
		t.Fatal("should not be background")
	}
	if p.Commands[2].Words[0].Text != "wc" || p.Commands[2].Words[1].Text != "-l" {
		t.Errorf("unexpected last stage: %+v", p.Commands[2].Words)
	}
}

func TestParseBackground(t *testing.T) {
	p, err := Parse("sleep 1 &")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.Background {
		t.Fatal("expected Background=true")
	}
}

func TestParseTrailingAmpersandAlone(t *testing.T) {
	if _, err := Parse("&"); err == nil {
		t.Fatal("trailing & alone should be a parse error")
	}
}

func TestParseMidlineAmpersandIsError(t *testing.T) {
	if _, err := Parse("cmd & cmd2"); err == nil {
		t.Fatal("mid-line & should be a parse error")
	}
}

func TestParseEmptyPipelineStage(t *testing.T) {
	cases := []string{"| cmd", "cmd |", "cmd | | cmd2"}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) expected parse error", c)
		}
	}
}

func TestParseRedirection(t *testing.T) {
	p, err := Parse("sort < in.txt > out.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cmd := p.Commands[0]
	if cmd.Stdin == nil || cmd.Stdin.Path != "in.txt" {
		t.Errorf("Stdin = %+v", cmd.Stdin)
	}
	if cmd.Stdout == nil || cmd.Stdout.Path != "out.txt" || cmd.Mode != Truncate {
		t.Errorf("Stdout = %+v mode=%v", cmd.Stdout, cmd.Mode)
	}
}

func TestParseAppendRedirection(t *testing.T) {
	p, err := Parse("echo hi >> out.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cmd := p.Commands[0]
	if cmd.Stdout == nil || cmd.Mode != Append {
		t.Errorf("expected append redirection, got %+v", cmd.Stdout)
	}
}

func TestParseMissingRedirectFilename(t *testing.T) {
	cases := []string{"cmd >", "cmd <", "cmd > > f"}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) expected parse error", c)
		}
	}
}
