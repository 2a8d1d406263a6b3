package suite

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/lattice-substrate/chess-oracle/internal/compare"
	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

// ReportSchemaVersion identifies the report artifact schema.
const ReportSchemaVersion = "oracle-report.v1"

// Report is the machine-consumed run artifact. It carries no wall-clock
// fields: rerunning the same fixtures against the same deterministic engine
// must produce byte-identical report bytes.
type Report struct {
	SchemaVersion string            `json:"schema_version"`
	Suite         string            `json:"suite"`
	Engine        string            `json:"engine"`
	Passed        int               `json:"passed"`
	SoftFailed    int               `json:"soft_failed"`
	Failed        int               `json:"failed"`
	Outcomes      []compare.Outcome `json:"outcomes"`
}

// BuildReport assembles the report for one suite run.
func BuildReport(suiteName, enginePath string, t Tally) *Report {
	outcomes := t.Outcomes
	if outcomes == nil {
		outcomes = []compare.Outcome{}
	}
	return &Report{
		SchemaVersion: ReportSchemaVersion,
		Suite:         suiteName,
		Engine:        enginePath,
		Passed:        t.Passed,
		SoftFailed:    t.SoftFailed,
		Failed:        t.Failed,
		Outcomes:      outcomes,
	}
}

// WriteReport writes the report in RFC 8785 canonical form, plus a sha256
// checksum file next to it, so artifacts can be diffed and attested
// byte-for-byte across runs and hosts.
func WriteReport(path string, r *Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return oraclerr.Wrap(oraclerr.InternalError, path, "marshal report", err)
	}
	canonical, err := jsoncanonicalizer.Transform(data)
	if err != nil {
		return oraclerr.Wrap(oraclerr.InternalError, path, "canonicalize report", err)
	}
	canonical = append(canonical, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return oraclerr.Wrap(oraclerr.InternalIO, path, "create report dir", err)
	}
	if err := os.WriteFile(path, canonical, 0o600); err != nil {
		return oraclerr.Wrap(oraclerr.InternalIO, path, "write report", err)
	}
	sum := sha256.Sum256(canonical)
	line := hex.EncodeToString(sum[:]) + "  " + filepath.Base(path) + "\n"
	if err := os.WriteFile(path+".sha256", []byte(line), 0o600); err != nil {
		return oraclerr.Wrap(oraclerr.InternalIO, path, "write report checksum", err)
	}
	return nil
}
