package kdmap_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/kdmap"
	"github.com/hupe1980/kdmap/blobstore"
	"github.com/hupe1980/kdmap/mapfile"
)

func Example() {
	ctx := context.Background()

	store := blobstore.NewMemoryStore()
	_ = store.Put(ctx, "level.json", []byte(`{"List":[
		{"Id":"a","Type":"grass","Width":1,"Height":1,"X":0,"Y":0},
		{"Id":"b","Type":"water","Width":1,"Height":1,"X":5,"Y":5},
		{"Id":"c","Type":"grass","Width":1,"Height":1,"X":9,"Y":1}
	]}`))

	m, err := kdmap.Open(ctx, store, "level.json")
	if err != nil {
		log.Fatal(err)
	}

	tile, _ := m.Nearest(ctx, 8, 2)
	fmt.Println(tile.ID, tile.Type)
	// Output: c grass
}

func ExampleMap_NearestOfType() {
	ctx := context.Background()

	m, err := kdmap.FromTiles([]mapfile.Tile{
		{ID: "a", Type: "grass", X: 0, Y: 0},
		{ID: "b", Type: "water", X: 5, Y: 5},
		{ID: "c", Type: "grass", X: 9, Y: 1},
	})
	if err != nil {
		log.Fatal(err)
	}

	tile, _ := m.NearestOfType(ctx, 8, 2, "water")
	fmt.Println(tile.ID)
	// Output: b
}

func ExampleMap_KNearest() {
	ctx := context.Background()

	m, _ := kdmap.FromTiles([]mapfile.Tile{
		{ID: "a", X: 0, Y: 0},
		{ID: "b", X: 3, Y: 4},
		{ID: "c", X: 6, Y: 8},
	})

	results, _ := m.KNearest(ctx, 0, 0, 2)
	for _, r := range results {
		fmt.Printf("%s %.0f\n", r.Tile.ID, r.Distance)
	}
	// Output:
	// a 0
	// b 5
}

func ExampleMap_Bounds() {
	m, _ := kdmap.FromTiles([]mapfile.Tile{
		{ID: "a", Width: 2, Height: 2, X: 0, Y: 0},
		{ID: "b", Width: 2, Height: 4, X: 10, Y: 3},
	})

	b, _ := m.Bounds()
	fmt.Println(b)
	// Output: Bounds(left=-1 right=11 bottom=-1 top=5)
}
