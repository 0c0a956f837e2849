package rate

import (
    "encoding/csv"
    "fmt"
    "io"
    "strings"
)

// Override is one user-supplied service mapping row:
// (carrier, service name) -> canonical tier.
type Override struct {
    Carrier     string
    ServiceName string
    Tier        string
}

// LoadOverridesCSV reads override rows in the form
// carrier,service_name,normalized_service. A leading header row is
// skipped. Keys are lowercased on load, matching how Normalize looks
// them up.
func LoadOverridesCSV(r io.Reader) ([]Override, error) {
    cr := csv.NewReader(r)
    cr.FieldsPerRecord = 3
    cr.TrimLeadingSpace = true

    var out []Override
    for i := 0; ; i++ {
        rec, err := cr.Read()
        if err == io.EOF {
            return out, nil
        }
        if err != nil {
            return nil, fmt.Errorf("mapping row %d: %w", i+1, err)
        }
        if i == 0 && strings.EqualFold(rec[0], "carrier") {
            continue
        }
        out = append(out, Override{
            Carrier:     strings.ToLower(strings.TrimSpace(rec[0])),
            ServiceName: strings.ToLower(strings.TrimSpace(rec[1])),
            Tier:        strings.TrimSpace(rec[2]),
        })
    }
}
