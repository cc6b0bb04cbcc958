package dns

import "context"

// Record describes a desired DNS record within the managed zone.
// Name is relative to the zone apex; "@" addresses the apex itself.
type Record struct {
	Type    string `json:"type"` // A, AAAA, CNAME, TXT
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
}

// Provider manages records in a single DNS zone.
type Provider interface {
	// List returns all records in the zone
	List(ctx context.Context) ([]Record, error)

	// Set creates or updates a record. Updating the same name/type pair
	// replaces the content rather than adding a duplicate.
	Set(ctx context.Context, rec Record) error

	// Delete removes a record by name and type
	Delete(ctx context.Context, name, recordType string) error

	// Zone returns the managed zone name
	Zone() string
}

// MockProvider is a test double for Provider
type MockProvider struct {
	ZoneName string
	Records  map[string]Record // keyed by name+"/"+type

	ListErr   error
	SetErr    error
	DeleteErr error

	SetCalls    []Record
	DeleteCalls []string
}

// NewMockProvider creates an empty mock provider for the given zone
func NewMockProvider(zone string) *MockProvider {
	return &MockProvider{
		ZoneName: zone,
		Records:  make(map[string]Record),
	}
}

func (m *MockProvider) List(ctx context.Context) ([]Record, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	records := make([]Record, 0, len(m.Records))
	for _, r := range m.Records {
		records = append(records, r)
	}
	return records, nil
}

func (m *MockProvider) Set(ctx context.Context, rec Record) error {
	m.SetCalls = append(m.SetCalls, rec)
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Records[rec.Name+"/"+rec.Type] = rec
	return nil
}

func (m *MockProvider) Delete(ctx context.Context, name, recordType string) error {
	m.DeleteCalls = append(m.DeleteCalls, name+"/"+recordType)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Records, name+"/"+recordType)
	return nil
}

func (m *MockProvider) Zone() string {
	return m.ZoneName
}
