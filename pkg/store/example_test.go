package store_test

import (
	"fmt"

	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/store"
)

func Example() {
	s := store.New()
	s.Subscribe(func(ev store.Event, st composition.State) {
		fmt.Printf("%d %s (%d layers)\n", ev.Seq, ev.Tag, len(st.Layers))
	})

	hero := s.AddLayer(composition.Image{Src: "asset:hero", Filename: "hero.png", Width: 200, Height: 100})
	s.UpdateLayer(hero.ID, store.LayerUpdate{
		Scale:       store.Ptr(2.0),
		ScaleTarget: store.Ptr(composition.ScaleBoth),
	})
	s.SetContainerWidth(5000)

	l, _ := s.State().Layer(hero.ID)
	fmt.Println(l.Width, l.Height, s.State().ContainerWidth)
	// Output:
	// 1 layer-add (1 layers)
	// 2 layer-update (1 layers)
	// 3 container-resize (1 layers)
	// 400px 200px 1200
}

func ExampleStore_UpdateLayer_aspectRatio() {
	s := store.New()
	l := s.AddLayer(composition.Image{Filename: "badge.png", Width: 200, Height: 100})

	s.UpdateLayer(l.ID, store.LayerUpdate{Width: store.Ptr(composition.Px(100))})

	l, _ = s.State().Layer(l.ID)
	fmt.Println(l.Width, l.Height)
	// Output: 100px 50px
}
