package lexparse

// RedirMode names the open mode for a stdout redirection.
type RedirMode int

const (
	// Truncate corresponds to '>': create or truncate.
	Truncate RedirMode = iota
	// Append corresponds to '>>': create or append.
	Append
)

// Redirect binds a redirection operator to a target path.
type Redirect struct {
	Path string
}

// SimpleCommand is one pipeline stage: a list of word tokens (index 0 is
// the command name, pre-expansion) plus at most one stdin and one stdout
// redirection.
type SimpleCommand struct {
	Words  []Token
	Stdin  *Redirect // '<'
	Stdout *Redirect
	Mode   RedirMode // valid only when Stdout != nil
}

// Pipeline is a nonempty ordered list of simple commands connected by '|',
// plus the trailing background flag.
type Pipeline struct {
	Commands   []*SimpleCommand
	Background bool
}

// Parse tokenizes and parses line into a Pipeline. An empty or
// whitespace/comment-only line yields (nil, nil): callers should treat that
// as "nothing to execute" rather than an error.
func Parse(line string) (*Pipeline, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	return parseTokens(tokens)
}

func parseTokens(tokens []Token) (*Pipeline, error) {
	background := false
	if last := tokens[len(tokens)-1]; last.IsOperator && last.Text == "&" {
		background = true
		tokens = tokens[:len(tokens)-1]
	}

	// Any remaining '&' is a parse error: mid-line background is not
	// supported, only a single trailing '&' for the whole pipeline.
	for _, tok := range tokens {
		if tok.IsOperator && tok.Text == "&" {
			return nil, parseErrorf("syntax error: unexpected '&'")
		}
	}
	if len(tokens) == 0 {
		return nil, parseErrorf("syntax error: empty command")
	}

	var stages [][]Token
	start := 0
	for i, tok := range tokens {
		if tok.IsOperator && tok.Text == "|" {
			stages = append(stages, tokens[start:i])
			start = i + 1
		}
	}
	stages = append(stages, tokens[start:])

	pipeline := &Pipeline{Background: background}
	for _, stage := range stages {
		cmd, err := parseSimpleCommand(stage)
		if err != nil {
			return nil, err
		}
		pipeline.Commands = append(pipeline.Commands, cmd)
	}
	return pipeline, nil
}

func parseSimpleCommand(stage []Token) (*SimpleCommand, error) {
	cmd := &SimpleCommand{}
	i := 0
	for i < len(stage) {
		tok := stage[i]
		if !tok.IsOperator {
			cmd.Words = append(cmd.Words, tok)
			i++
			continue
		}
		switch tok.Text {
		case "<":
			path, next, err := redirTarget(stage, i)
			if err != nil {
				return nil, err
			}
			cmd.Stdin = &Redirect{Path: path}
			i = next
		case ">":
			path, next, err := redirTarget(stage, i)
			if err != nil {
				return nil, err
			}
			cmd.Stdout = &Redirect{Path: path}
			cmd.Mode = Truncate
			i = next
		case ">>":
			path, next, err := redirTarget(stage, i)
			if err != nil {
				return nil, err
			}
			cmd.Stdout = &Redirect{Path: path}
			cmd.Mode = Append
			i = next
		default:
			return nil, parseErrorf("syntax error near unexpected token %q", tok.Text)
		}
	}
	if len(cmd.Words) == 0 {
		return nil, parseErrorf("syntax error: empty pipeline stage")
	}
	return cmd, nil
}

// redirTarget returns the filename word immediately following the
// redirection operator at stage[opIdx], and the index just past it.
func redirTarget(stage []Token, opIdx int) (string, int, error) {
	if opIdx+1 >= len(stage) {
		return "", 0, parseErrorf("syntax error: expected filename after %q", stage[opIdx].Text)
	}
	next := stage[opIdx+1]
	if next.IsOperator {
		return "", 0, parseErrorf("syntax error: expected filename after %q, found %q", stage[opIdx].Text, next.Text)
	}
	return next.Text, opIdx + 2, nil
}
