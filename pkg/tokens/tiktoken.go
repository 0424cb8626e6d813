package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/Latias94/miniagent/pkg/conversation"
)

// TiktokenEstimator counts tokens with the cl100k_base BPE encoding, the
// encoding shared by the GPT-4 family and close enough for Claude-family
// budgeting.
type TiktokenEstimator struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenEstimator() (*TiktokenEstimator, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load cl100k_base encoding: %w", err)
	}
	return &TiktokenEstimator{enc: enc}, nil
}

func (e *TiktokenEstimator) Estimate(messages []conversation.Message) int {
	total := 0
	for _, m := range messages {
		forEachTextUnit(m, func(s string) {
			total += len(e.enc.Encode(s, nil, nil))
		})
		total += messageOverhead
	}
	return total
}
