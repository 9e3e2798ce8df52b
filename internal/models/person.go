package models

// Person is the core directory entity: one individual's identity and
// descriptive attributes for external reporting or transmission.
//
// Field order is part of the wire contract. JSON encoders emit struct
// fields in declaration order, so serialized output is always
// name, age, favourite_food.
type Person struct {
	Name string `json:"name"`
	Age  uint32 `json:"age"`

	// FavouriteFood is nil when no favourite food is known. A nil pointer
	// encodes as JSON null; a pointer to "" encodes as "". The two states
	// are distinct and stay distinct through serialization, which is why
	// the tag carries no omitempty.
	FavouriteFood *string `json:"favourite_food"`
}

// Favourite wraps a food value for assignment to FavouriteFood.
func Favourite(food string) *string {
	return &food
}
