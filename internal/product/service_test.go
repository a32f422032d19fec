// AngelaMos | 2026
// service_test.go

package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/identity"
)

type fakeRepo struct {
	mu       sync.Mutex
	products map[int64]*Product
	nextID   int64
	lastList ListQuery
}

func newFakeRepo(products ...*Product) *fakeRepo {
	f := &fakeRepo{products: map[int64]*Product{}, nextID: 100}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeRepo) List(_ context.Context, q ListQuery) ([]Summary, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = q
	out := []Summary{}
	for _, p := range f.products {
		out = append(out, Summary{ID: p.ID, ItemNameKR: p.ItemNameKR, Image: p.Image})
	}
	return out, len(out), nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.products[id]
	return ok, nil
}

func (f *fakeRepo) Create(_ context.Context, set []Assignment) (*Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := &Product{ID: f.nextID}
	for _, a := range set {
		if a.Column == "item_name_kr" {
			p.ItemNameKR = a.Value.(*string)
		}
		if a.Column == "image" {
			p.Image = a.Value.(*string)
		}
	}
	f.products[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, set []Assignment) (*Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("update product: %w", core.ErrNotFound)
	}
	for _, a := range set {
		if a.Column == "image" {
			p.Image = a.Value.(*string)
		}
	}
	now := time.Now()
	p.UpdatedAt = &now
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeRepo) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.products), nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}, types: map[string]string{}}
}

func (s *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if s.err != nil {
		return s.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = string(b)
	s.types[key] = contentType
	return nil
}

func (s *fakeStore) PublicBase() string { return "https://img.example.com" }

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
	err      error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return func() {}, false, l.err
	}
	if l.held[key] {
		return func() {}, false, nil
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released = append(l.released, key)
	}, true, nil
}

var (
	admin = &identity.Identity{ID: "a1", Email: "admin@ristan.kr", Role: identity.RoleAdmin}
	buyer = &identity.Identity{ID: "u1", Email: "buyer@ship.co", Role: identity.RoleUser}
)

func strPtr(s string) *string { return &s }

func TestServiceListRequiresCaller(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeStore(), newFakeLocker())

	_, err := svc.List(context.Background(), nil, ListQuery{})
	if core.StatusFor(err) != http.StatusUnauthorized {
		t.Fatalf("List(nil) status = %d, want 401", core.StatusFor(err))
	}
}

func TestServiceListResolvesImages(t *testing.T) {
	repo := newFakeRepo(
		&Product{ID: 1, ItemNameKR: strPtr("로프"), Image: strPtr("1.jpg")},
	)
	svc := NewService(repo, newFakeStore(), newFakeLocker())

	resp, err := svc.List(context.Background(), buyer, ListQuery{EndRow: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.TotalCount != 1 || len(resp.Rows) != 1 {
		t.Fatalf("List() = %+v", resp)
	}
	if got := resp.Rows[0].ImageURL; got != "https://img.example.com/products/1.jpg" {
		t.Errorf("ImageURL = %q", got)
	}
}

func TestServiceMutationsRecheckRole(t *testing.T) {
	svc := NewService(newFakeRepo(&Product{ID: 1}), newFakeStore(), newFakeLocker())
	ctx := context.Background()
	create := &Mutation{Fields: Fields{ItemNameKR: strPtr("a")}, present: map[string]struct{}{"item_name_kr": {}}}

	for _, tc := range []struct {
		actor *identity.Identity
		want  int
	}{
		{nil, http.StatusUnauthorized},
		{buyer, http.StatusForbidden},
	} {
		if _, err := svc.Create(ctx, tc.actor, create); core.StatusFor(err) != tc.want {
			t.Errorf("Create() status = %d, want %d", core.StatusFor(err), tc.want)
		}
		if _, err := svc.Update(ctx, tc.actor, &Mutation{ID: 1}); core.StatusFor(err) != tc.want {
			t.Errorf("Update() status = %d, want %d", core.StatusFor(err), tc.want)
		}
		if err := svc.Delete(ctx, tc.actor, "1"); core.StatusFor(err) != tc.want {
			t.Errorf("Delete() status = %d, want %d", core.StatusFor(err), tc.want)
		}
		_, err := svc.UploadImage(ctx, tc.actor, 1, "a.png", strings.NewReader("x"), 1)
		if core.StatusFor(err) != tc.want {
			t.Errorf("UploadImage() status = %d, want %d", core.StatusFor(err), tc.want)
		}
	}
}

func TestServiceCreateRequiresName(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeStore(), newFakeLocker())

	m := &Mutation{Fields: Fields{Brand: strPtr("Acme")}, present: map[string]struct{}{"brand": {}}}
	if _, err := svc.Create(context.Background(), admin, m); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("Create() error = %v, want ErrInvalidInput", err)
	}
}

func TestServiceUpdateMissing(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeStore(), newFakeLocker())

	_, err := svc.Update(context.Background(), admin, &Mutation{ID: 9})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestServiceDeleteValidatesID(t *testing.T) {
	repo := newFakeRepo(&Product{ID: 5})
	svc := NewService(repo, newFakeStore(), newFakeLocker())
	ctx := context.Background()

	for _, raw := range []string{"", "abc", "-1"} {
		if err := svc.Delete(ctx, admin, raw); core.StatusFor(err) != http.StatusBadRequest {
			t.Errorf("Delete(%q) status = %d, want 400", raw, core.StatusFor(err))
		}
	}

	if err := svc.Delete(ctx, admin, "5"); err != nil {
		t.Fatalf("Delete(5) error = %v", err)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Errorf("products left = %d", n)
	}
	if err := svc.Delete(ctx, admin, "5"); err != nil {
		t.Errorf("second Delete(5) error = %v, want nil", err)
	}
}

func TestServiceUploadImage(t *testing.T) {
	store := newFakeStore()
	locks := newFakeLocker()
	svc := NewService(newFakeRepo(&Product{ID: 42}), store, locks)

	name, err := svc.UploadImage(context.Background(), admin, 42, "Valve.PNG", strings.NewReader("png-bytes"), 9)
	if err != nil {
		t.Fatalf("UploadImage() error = %v", err)
	}
	if name != "42.png" {
		t.Errorf("filename = %q, want 42.png", name)
	}
	if store.objects["products/42.png"] != "png-bytes" {
		t.Errorf("stored objects = %v", store.objects)
	}
	if store.types["products/42.png"] != "image/png" {
		t.Errorf("content type = %q", store.types["products/42.png"])
	}
	if len(locks.released) != 1 || locks.released[0] != "upload:product:42" {
		t.Errorf("released locks = %v", locks.released)
	}
}

func TestServiceUploadImageFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported extension", func(t *testing.T) {
		svc := NewService(newFakeRepo(&Product{ID: 1}), newFakeStore(), newFakeLocker())
		_, err := svc.UploadImage(ctx, admin, 1, "manual.pdf", strings.NewReader("x"), 1)
		if core.StatusFor(err) != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", core.StatusFor(err))
		}
	})

	t.Run("missing product", func(t *testing.T) {
		svc := NewService(newFakeRepo(), newFakeStore(), newFakeLocker())
		_, err := svc.UploadImage(ctx, admin, 1, "a.jpg", strings.NewReader("x"), 1)
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("upload in progress", func(t *testing.T) {
		locks := newFakeLocker()
		locks.held["upload:product:1"] = true
		store := newFakeStore()
		svc := NewService(newFakeRepo(&Product{ID: 1}), store, locks)

		_, err := svc.UploadImage(ctx, admin, 1, "a.jpg", strings.NewReader("x"), 1)
		if !errors.Is(err, core.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
		if len(store.objects) != 0 {
			t.Errorf("object written despite held lock")
		}
	})

	t.Run("lock backend down", func(t *testing.T) {
		locks := newFakeLocker()
		locks.err = errors.New("dial tcp: connection refused")
		svc := NewService(newFakeRepo(&Product{ID: 1}), newFakeStore(), locks)

		_, err := svc.UploadImage(ctx, admin, 1, "a.jpg", strings.NewReader("x"), 1)
		if core.StatusFor(err) != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", core.StatusFor(err))
		}
	})

	t.Run("storage error", func(t *testing.T) {
		store := newFakeStore()
		store.err = fmt.Errorf("put object: %w", core.ErrUpstream)
		locks := newFakeLocker()
		svc := NewService(newFakeRepo(&Product{ID: 1}), store, locks)

		_, err := svc.UploadImage(ctx, admin, 1, "a.jpg", strings.NewReader("x"), 1)
		if core.StatusFor(err) != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", core.StatusFor(err))
		}
		if len(locks.held) != 0 {
			t.Errorf("lock not released after failure")
		}
	})
}

func TestServiceCategoriesIsCopy(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeStore(), newFakeLocker())

	cats := svc.Categories()
	cats[0] = "mutated"
	if Categories[0] == "mutated" {
		t.Error("Categories() exposed the shared slice")
	}
}
