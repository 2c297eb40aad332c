// Command adtree is a small demo driver over pkg/db, grounded on the
// teacher's cmd/db: insert a batch of generated key-value pairs, scan the
// tree back in order, look a few keys up, then delete a fraction of them
// and report how many were deleted.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"adtree/pkg/db"
)

func main() {
	count := flag.Int("n", 1000, "number of key-value pairs to insert")
	seed := flag.Int64("seed", 1, "random seed for key generation and deletion sampling")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	database := db.NewDB()

	fmt.Printf("inserting %d key-value pairs (seed %d)...\n", *count, *seed)
	keys := make([]string, *count)
	for i := 0; i < *count; i++ {
		key := fmt.Sprintf("key-%08d", i)
		val := fmt.Sprintf("val-%d", rng.Int())
		keys[i] = key
		if err := database.Put([]byte(key), []byte(val)); err != nil {
			log.Fatalf("put %s: %v", key, err)
		}
	}

	var scanned int
	database.Traverse(func(key, val []byte) { scanned++ })
	fmt.Printf("scanned %d entries in ascending key order\n", scanned)

	fmt.Println("\nsample lookups:")
	for _, i := range []int{0, *count / 2, *count - 1} {
		if i < 0 || i >= *count {
			continue
		}
		val, found := database.Get([]byte(keys[i]))
		fmt.Printf("  %s -> %q (found=%v)\n", keys[i], val, found)
	}

	fmt.Println("\ndeleting a quarter of the keys...")
	var deleted int
	for _, i := range rng.Perm(*count)[:*count/4] {
		if err := database.Delete([]byte(keys[i])); err != nil {
			log.Fatalf("delete %s: %v", keys[i], err)
		}
		deleted++
	}
	fmt.Printf("deleted %d keys\n", deleted)

	fmt.Printf("branch cache hit rate: %.2f%%\n", database.BranchCacheAccuracy()*100)
}
