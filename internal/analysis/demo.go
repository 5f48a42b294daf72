package analysis

import "math/rand/v2"

// syntheticDescriptions are the canned demo-mode responses. They are written
// in the same register as real model output so demos read naturally.
var syntheticDescriptions = []string{
	"A bright classroom with rows of wooden desks facing a whiteboard. " +
		"Sunlight comes through large windows on the left, and a green " +
		"backpack rests on the front desk.",
	"A golden retriever sitting on a park lawn next to a red ball. Trees " +
		"line the path behind the dog, and two people are walking in the " +
		"distance.",
	"An open laptop on a kitchen table beside a cup of coffee and a " +
		"notebook with handwritten notes. The screen shows a text document.",
	"A city street at dusk with lit storefronts on both sides. A cyclist " +
		"waits at the crosswalk and a bus approaches from the right.",
	"A bookshelf filled with colorful paperbacks. A small potted plant and " +
		"a framed photo of a beach sit on the middle shelf.",
	"A whiteboard covered in diagrams and the handwritten words 'Chapter 4: " +
		"Photosynthesis'. A marker and an eraser lie on the tray below.",
}

// syntheticDescription returns a randomly selected canned description.
func syntheticDescription() string {
	return syntheticDescriptions[rand.IntN(len(syntheticDescriptions))]
}
