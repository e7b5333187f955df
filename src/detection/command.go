package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"screen-translate-overlay/src/sentence"
)

// CredentialEnvVar carries the API credential to an external detector.
const CredentialEnvVar = "OVERLAY_API_KEY"

// CommandSession delegates detection and translation to an external program,
// invoked as: <command> <args...> --lang <lang> <imagePath>.
//
// The program prints a JSON array on stdout:
//
//	[{"text": "Hello", "box": [x, y, w, h]}]
//
// Boxes use the min+size form and are converted to min+max here.
type CommandSession struct {
	command    string
	args       []string
	lang       string
	credential string
}

func NewCommandSession(command string, args []string, lang, credential string) (*CommandSession, error) {
	if _, err := exec.LookPath(command); err != nil {
		return nil, fmt.Errorf("detector command %q not found: %w", command, err)
	}
	return &CommandSession{command: command, args: args, lang: lang, credential: credential}, nil
}

type commandItem struct {
	Text string `json:"text"`
	Box  []int  `json:"box"`
}

func (s *CommandSession) Process(ctx context.Context, imagePath string) (sentence.Set, error) {
	args := append(append([]string{}, s.args...), "--lang", s.lang, imagePath)
	cmd := exec.CommandContext(ctx, s.command, args...)
	cmd.Env = append(os.Environ(), CredentialEnvVar+"="+s.credential)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &DetectionError{Op: OpDetect, Err: fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))}
	}
	set, err := DecodeXYWH(stdout.Bytes())
	if err != nil {
		return nil, &DetectionError{Op: OpDecode, Err: err}
	}
	return set, nil
}

// DecodeXYWH parses detector output with [x, y, w, h] boxes.
func DecodeXYWH(data []byte) (sentence.Set, error) {
	var items []commandItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("malformed detector output: %w", err)
	}
	set := make(sentence.Set, 0, len(items))
	for i, it := range items {
		if len(it.Box) != 4 {
			return nil, fmt.Errorf("item %d: box has %d values, want 4", i, len(it.Box))
		}
		set = append(set, sentence.Sentence{
			Text: it.Text,
			Box:  sentence.FromXYWH(it.Box[0], it.Box[1], it.Box[2], it.Box[3]),
		})
	}
	return set, nil
}
