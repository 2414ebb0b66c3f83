package inventory

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/RigelNana/gazotheque/pkg/gazapi"
	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func int64p(v int64) *int64 { return &v }

func day(s string) models.NullTime {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return models.NewNullTime(t)
}

// fakeAPI is an in-memory Material Record Service.
type fakeAPI struct {
	mu        sync.Mutex
	materials map[int64]models.Material
	nextID    int64

	createCalls int
	lastFields  []gazapi.FormField
	lastTags    []string
	puts        []map[string]any
	deletes     []int64

	// hooks to simulate failures or server-side effects
	createErr error
	putErr    error
	deleteErr error
	afterPut  func(m *models.Material, payload map[string]any)
}

func newFakeAPI(items ...models.Material) *fakeAPI {
	f := &fakeAPI{materials: map[int64]models.Material{}, nextID: 100}
	for _, m := range items {
		f.materials[m.MaterialID] = m
	}
	return f
}

func (f *fakeAPI) GetMaterial(ctx context.Context, id int64) (*models.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.materials[id]
	if !ok {
		return nil, &gazapi.APIError{Status: 404, Key: "detail", Message: "Not found."}
	}
	return &m, nil
}

func (f *fakeAPI) UpdateMaterial(ctx context.Context, id int64, payload map[string]any) (*models.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, payload)
	if f.putErr != nil {
		return nil, f.putErr
	}
	m := f.materials[id]
	if v, ok := payload["origin"].(string); ok {
		m.Origin = v
	}
	if v, ok := payload["material_title"].(string); ok {
		m.Title = v
	}
	if v, ok := payload["date_depart"].(string); ok {
		t, err := models.ParseNullTime(v)
		if err != nil {
			return nil, err
		}
		m.DateDepart = t
	}
	if f.afterPut != nil {
		f.afterPut(&m, payload)
	}
	f.materials[id] = m
	return &m, nil
}

func (f *fakeAPI) DeleteMaterial(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.materials, id)
	return nil
}

func (f *fakeAPI) CreateMaterial(ctx context.Context, fields []gazapi.FormField, tags []string) (*models.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastFields = fields
	f.lastTags = tags
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	m := models.Material{MaterialID: f.nextID, Tags: tags, QRCode: "qr"}
	for _, fld := range fields {
		if fld.Key == string(FieldTitle) {
			m.Title = fld.Value
		}
	}
	f.materials[m.MaterialID] = m
	return &m, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []int64
	err   error
}

func (n *recordingNotifier) MaterialConsigned(ctx context.Context, m *models.Material, by *models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, m.MaterialID)
	return n.err
}
