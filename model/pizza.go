/*
Copyright 2024 Pizza Hunt Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"bytes"
	"encoding/json"
	"time"
)

const (
	DefaultPizzaSize = "Large"
)

// PizzaSizes lists the sizes the order form offers.
var PizzaSizes = []interface{}{"Personal", "Small", "Medium", "Large", "Extra Large"}

// Pizza is the document stored for every order. Comments are stored as references
// (CommentIDs) and populated into Comments on read.
type Pizza struct {
	PizzaID      string    `json:"_id" bson:"_id"`
	PizzaName    string    `json:"pizzaName" bson:"pizzaName"`
	CreatedBy    string    `json:"createdBy" bson:"createdBy"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	Size         string    `json:"size" bson:"size"`
	Toppings     []string  `json:"toppings" bson:"toppings"`
	CommentIDs   []string  `json:"-" bson:"comments"`
	Comments     []Comment `json:"comments" bson:"-"`
	CommentCount int       `json:"commentCount" bson:"-"`
}

// PizzaUpdate carries the fields of a partial update. Nil fields are left untouched.
type PizzaUpdate struct {
	PizzaName *string
	CreatedBy *string
	Size      *string
	Toppings  *[]string
}

// ApplyDefaults fills the values the schema defaults on create.
func (p *Pizza) ApplyDefaults(now time.Time) {
	if p.PizzaID == "" {
		p.PizzaID = GenerateUUIDWithSuffix("pza")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.Size == "" {
		p.Size = DefaultPizzaSize
	}
	if p.Toppings == nil {
		p.Toppings = []string{}
	}
}

// Apply copies the set fields of u onto p.
func (u PizzaUpdate) Apply(p *Pizza) {
	if u.PizzaName != nil {
		p.PizzaName = *u.PizzaName
	}
	if u.CreatedBy != nil {
		p.CreatedBy = *u.CreatedBy
	}
	if u.Size != nil {
		p.Size = *u.Size
	}
	if u.Toppings != nil {
		p.Toppings = *u.Toppings
	}
}

// IsEmpty reports whether the update sets nothing.
func (u PizzaUpdate) IsEmpty() bool {
	return u.PizzaName == nil && u.CreatedBy == nil && u.Size == nil && u.Toppings == nil
}

// Populate attaches the comment documents referenced by the pizza.
func (p *Pizza) Populate(comments []Comment) {
	p.Comments = comments
	p.CommentCount = len(comments)
}

// MarshalJSON emits the commentCount virtual and never writes null arrays.
func (p Pizza) MarshalJSON() ([]byte, error) {
	type pizza Pizza
	out := pizza(p)
	if out.Toppings == nil {
		out.Toppings = []string{}
	}
	if out.Comments == nil {
		out.Comments = []Comment{}
	}
	out.CommentCount = len(out.Comments)
	return json.Marshal(out)
}

// Toppings decodes from any JSON. A single value becomes a one-element list,
// null elements are dropped and non-string elements keep their JSON text.
type Toppings []string

func (t *Toppings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if isNull(data) {
		*t = nil
		return nil
	}

	var elems []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &elems); err != nil {
			return err
		}
	} else {
		elems = []json.RawMessage{data}
	}

	out := make(Toppings, 0, len(elems))
	for _, e := range elems {
		if isNull(bytes.TrimSpace(e)) {
			continue
		}
		out = append(out, JSONText(e))
	}
	*t = out
	return nil
}

// JSONText returns a JSON string's value, or the compact JSON text of any other
// value. Empty input and null give "".
func JSONText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isNull(data []byte) bool {
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}
