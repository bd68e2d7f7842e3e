package jsonio

import (
	"encoding/json"
	"io"

	"github.com/wdm0006/forecastio/pkg/forecast"
)

// MessageRecord is one line of a validation report.
type MessageRecord struct {
	RunID    string `json:"run_id,omitempty"`
	File     string `json:"file"`
	Priority int    `json:"priority"`
	Stage    string `json:"stage"`
	Message  string `json:"message"`
}

// NewMessageRecord tags m with the file it was found in.
func NewMessageRecord(runID, file string, m forecast.Message) MessageRecord {
	return MessageRecord{
		RunID:    runID,
		File:     file,
		Priority: int(m.Priority),
		Stage:    m.Priority.String(),
		Message:  m.Text,
	}
}

// ReportWriter writes MessageRecords as JSON lines.
type ReportWriter struct {
	enc *json.Encoder
	n   int
}

func NewReportWriter(w io.Writer) *ReportWriter {
	return &ReportWriter{enc: json.NewEncoder(w)}
}

// Write appends one record per message.
func (rw *ReportWriter) Write(runID, file string, msgs []forecast.Message) error {
	for _, m := range msgs {
		if err := rw.enc.Encode(NewMessageRecord(runID, file, m)); err != nil {
			return err
		}
		rw.n++
	}
	return nil
}

// Count is the number of records written so far.
func (rw *ReportWriter) Count() int { return rw.n }

// ReadReport decodes a JSON-lines report until EOF.
func ReadReport(r io.Reader) ([]MessageRecord, error) {
	dec := json.NewDecoder(r)
	var out []MessageRecord
	for {
		var rec MessageRecord
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, err
		}
		out = append(out, rec)
	}
}
