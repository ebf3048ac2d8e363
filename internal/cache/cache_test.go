package cache

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestDiskStore_GetPut(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ctx, "page:sogang:20151:경영"); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get on empty store = %v, want ErrMiss", err)
	}
	if err := s.Put(ctx, "page:sogang:20151:경영", []byte("<html/>")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "page:sogang:20151:경영")
	if err != nil || string(got) != "<html/>" {
		t.Errorf("Get = %q, %v", got, err)
	}
	if err := s.Put(ctx, "page:sogang:20151:경영", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get(ctx, "page:sogang:20151:경영"); string(got) != "v2" {
		t.Errorf("overwrite: Get = %q", got)
	}
}

func TestDiskStore_SlashKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := NewDiskStore(t.TempDir())
	key := "page:sogang:20151:인문/사회"
	if err := s.Put(ctx, key, []byte("x")); err != nil {
		t.Fatal(err)
	}
	keys, err := s.Keys(ctx, "page:sogang:20151:")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(keys, []string{key}) {
		t.Errorf("Keys = %q", keys)
	}
}

func TestDiskStore_KeysAndDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := NewDiskStore(t.TempDir())
	for _, k := range []string{"b:2", "a:1", "b:1", "c:1"} {
		if err := s.Put(ctx, k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}
	keys, _ := s.Keys(ctx, "b:")
	if !reflect.DeepEqual(keys, []string{"b:1", "b:2"}) {
		t.Errorf("Keys(b:) = %q", keys)
	}
	if err := s.Delete(ctx, "b:1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "b:1"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
	keys, _ = s.Keys(ctx, "")
	if !reflect.DeepEqual(keys, []string{"a:1", "b:2", "c:1"}) {
		t.Errorf("Keys() = %q", keys)
	}
}

func TestTry(t *testing.T) {
	ctx := context.Background()
	s, _ := NewDiskStore(t.TempDir())
	calls := 0
	fill := func(context.Context) ([]byte, error) {
		calls++
		return []byte("fresh"), nil
	}
	for i := 0; i < 3; i++ {
		got, err := Try(ctx, s, "k", fill)
		if err != nil || string(got) != "fresh" {
			t.Fatalf("Try = %q, %v", got, err)
		}
	}
	if calls != 1 {
		t.Errorf("fill called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := Try(ctx, s, "other", func(context.Context) ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("Try error = %v", err)
	}
	if _, err := s.Get(ctx, "other"); !errors.Is(err, ErrMiss) {
		t.Error("a failed fill must not be cached")
	}
}

func TestTryJSON(t *testing.T) {
	ctx := context.Background()
	s, _ := NewDiskStore(t.TempDir())
	rows := [][]string{{"a", "b"}, {"c"}}
	got, err := TryJSON(ctx, s, "rows", func(context.Context) ([][]string, error) { return rows, nil })
	if err != nil || !reflect.DeepEqual(got, rows) {
		t.Fatalf("TryJSON = %q, %v", got, err)
	}
	again, err := TryJSON(ctx, s, "rows", func(context.Context) ([][]string, error) {
		t.Error("fill called on a hit")
		return nil, nil
	})
	if err != nil || !reflect.DeepEqual(again, rows) {
		t.Errorf("TryJSON hit = %q, %v", again, err)
	}

	_ = s.Put(ctx, "bad", []byte("{"))
	if _, err := TryJSON(ctx, s, "bad", func(context.Context) ([][]string, error) { return nil, nil }); err == nil {
		t.Error("corrupt entry should fail to decode")
	}
}

func TestUniqueSorted(t *testing.T) {
	got := uniqueSorted([]string{"rows:b:2", "rows:a:1", "rows:b:2", "rows:a:1", "rows:c"})
	want := []string{"rows:a:1", "rows:b:2", "rows:c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("uniqueSorted = %q, want %q", got, want)
	}
	if got := uniqueSorted(nil); len(got) != 0 {
		t.Errorf("uniqueSorted(nil) = %q", got)
	}
}
