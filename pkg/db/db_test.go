package db

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
)

func TestNewDB(t *testing.T) {
	database := NewDB()
	if _, found := database.Get([]byte("missing")); found {
		t.Error("empty database should not find any keys")
	}
}

func TestPutAndGet(t *testing.T) {
	database := NewDB()

	key := []byte("test_key")
	value := []byte("test_value")

	if err := database.Put(key, value); err != nil {
		t.Fatalf("failed to put value: %v", err)
	}

	got, found := database.Get(key)
	if !found {
		t.Error("failed to get value")
	}
	if !bytes.Equal(got, value) {
		t.Errorf("expected value %s, got %s", value, got)
	}
}

func TestDelete(t *testing.T) {
	database := NewDB()

	key := []byte("test_key")
	value := []byte("test_value")
	if err := database.Put(key, value); err != nil {
		t.Fatalf("failed to put value: %v", err)
	}

	if err := database.Delete(key); err != nil {
		t.Fatalf("failed to delete key: %v", err)
	}

	if _, found := database.Get(key); found {
		t.Error("deleted key still exists")
	}
}

func TestTraverse(t *testing.T) {
	database := NewDB()

	pairs := map[string]string{
		"apple":  "red",
		"banana": "yellow",
		"grape":  "purple",
		"orange": "orange",
	}

	for k, v := range pairs {
		if err := database.Put([]byte(k), []byte(v)); err != nil {
			t.Fatalf("failed to put value: %v", err)
		}
	}

	found := make(map[string]string)
	database.Traverse(func(key, value []byte) {
		found[string(key)] = string(value)
	})

	if len(found) != len(pairs) {
		t.Errorf("expected %d pairs, found %d", len(pairs), len(found))
	}
	for k, v := range pairs {
		if found[k] != v {
			t.Errorf("expected %s -> %s, found %s -> %s", k, v, k, found[k])
		}
	}
}

func TestRange(t *testing.T) {
	database := NewDB()
	words := []string{"mango", "apple", "kiwi", "banana", "fig", "date"}
	for _, w := range words {
		if err := database.Put([]byte(w), []byte(w)); err != nil {
			t.Fatalf("failed to put value: %v", err)
		}
	}

	entries := database.Range([]byte("banana"), []byte("kiwi"))
	var got []string
	for _, e := range entries {
		got = append(got, string(e.Key))
	}
	want := []string{"banana", "date", "fig"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestRangeDescending(t *testing.T) {
	database := NewDB()
	words := []string{"mango", "apple", "kiwi", "banana", "fig", "date"}
	for _, w := range words {
		if err := database.Put([]byte(w), []byte(w)); err != nil {
			t.Fatalf("failed to put value: %v", err)
		}
	}

	entries := database.RangeDescending([]byte("banana"), []byte("kiwi"))
	var got []string
	for _, e := range entries {
		got = append(got, string(e.Key))
	}
	want := []string{"fig", "date", "banana"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestUpdateExistingKey(t *testing.T) {
	database := NewDB()

	key := []byte("test_key")
	if err := database.Put(key, []byte("initial_value")); err != nil {
		t.Fatalf("failed to put initial value: %v", err)
	}
	if err := database.Put(key, []byte("updated_value")); err != nil {
		t.Fatalf("failed to update value: %v", err)
	}

	got, found := database.Get(key)
	if !found {
		t.Error("failed to get updated value")
	}
	if !bytes.Equal(got, []byte("updated_value")) {
		t.Errorf("expected updated_value, got %s", got)
	}
}

func TestLargeDataset(t *testing.T) {
	database := NewDB()

	const numPairs = 1000
	for i := 0; i < numPairs; i++ {
		key := []byte(fmt.Sprintf("key%04d", i))
		value := []byte(fmt.Sprintf("value%d", i))
		if err := database.Put(key, value); err != nil {
			t.Fatalf("failed to put value: %v", err)
		}
	}

	for i := 0; i < numPairs; i++ {
		key := []byte(fmt.Sprintf("key%04d", i))
		expected := []byte(fmt.Sprintf("value%d", i))
		got, found := database.Get(key)
		if !found {
			t.Errorf("failed to find key %s", key)
			continue
		}
		if !bytes.Equal(got, expected) {
			t.Errorf("expected value %s for key %s, got %s", expected, key, got)
		}
	}
}

func TestEdgeCases(t *testing.T) {
	database := NewDB()

	if err := database.Put([]byte{}, []byte("empty")); err != nil {
		t.Fatalf("failed to put empty key: %v", err)
	}
	if val, found := database.Get([]byte{}); !found {
		t.Error("failed to find empty key")
	} else if !bytes.Equal(val, []byte("empty")) {
		t.Error("wrong value for empty key")
	}

	longKey := bytes.Repeat([]byte("x"), 500)
	longValue := bytes.Repeat([]byte("y"), 500)
	if err := database.Put(longKey, longValue); err != nil {
		t.Fatalf("failed to put long key: %v", err)
	}
	if val, found := database.Get(longKey); !found {
		t.Error("failed to find long key")
	} else if !bytes.Equal(val, longValue) {
		t.Error("wrong value for long key")
	}

	specialKey := []byte("!@#$%^&*()")
	if err := database.Put(specialKey, []byte("special")); err != nil {
		t.Fatalf("failed to put special key: %v", err)
	}
	if val, found := database.Get(specialKey); !found {
		t.Error("failed to find special key")
	} else if !bytes.Equal(val, []byte("special")) {
		t.Error("wrong value for special key")
	}
}

// TestConcurrentAccessSerializes exercises DB's mutex boundary under
// concurrent Put/Get/Delete from many goroutines; the race detector (not
// run here, but this shape is written to pass under -race) is the real
// check, this test just confirms no data is lost or corrupted.
func TestConcurrentAccessSerializes(t *testing.T) {
	database := NewDB()

	var wg sync.WaitGroup
	const workers = 8
	const perWorker = 200
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := []byte(fmt.Sprintf("w%d-k%d", w, i))
				val := []byte(fmt.Sprintf("w%d-v%d", w, i))
				database.Put(key, val)
				database.Get(key)
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			key := []byte(fmt.Sprintf("w%d-k%d", w, i))
			want := []byte(fmt.Sprintf("w%d-v%d", w, i))
			got, found := database.Get(key)
			if !found || !bytes.Equal(got, want) {
				t.Errorf("key %s: want %s, got %s (found=%v)", key, want, got, found)
			}
		}
	}
}
