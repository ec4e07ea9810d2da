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
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPizzaApplyDefaults(t *testing.T) {
	now := time.Now()
	p := Pizza{PizzaName: "Margherita", CreatedBy: "Lernantino"}
	p.ApplyDefaults(now)

	assert.True(t, strings.HasPrefix(p.PizzaID, "pza_"))
	assert.Equal(t, DefaultPizzaSize, p.Size)
	assert.Equal(t, now, p.CreatedAt)
	assert.NotNil(t, p.Toppings)

	custom := Pizza{Size: "Small", Toppings: []string{"Basil"}}
	custom.ApplyDefaults(now)
	assert.Equal(t, "Small", custom.Size)
	assert.Equal(t, []string{"Basil"}, custom.Toppings)
}

func TestPizzaUpdateApply(t *testing.T) {
	p := Pizza{PizzaName: "Old", CreatedBy: "Ann", Size: "Large", Toppings: []string{"Cheese"}}
	name := "New"
	toppings := []string{"Pepperoni", "Olives"}

	update := PizzaUpdate{PizzaName: &name, Toppings: &toppings}
	assert.False(t, update.IsEmpty())
	update.Apply(&p)

	assert.Equal(t, "New", p.PizzaName)
	assert.Equal(t, "Ann", p.CreatedBy)
	assert.Equal(t, "Large", p.Size)
	assert.Equal(t, toppings, p.Toppings)
	assert.True(t, PizzaUpdate{}.IsEmpty())
}

func TestPizzaMarshalJSON_Virtuals(t *testing.T) {
	p := Pizza{PizzaID: "pza_1", PizzaName: "Veggie", CommentIDs: []string{"cmt_1"}}
	p.Populate([]Comment{{
		CommentID:   "cmt_1",
		PizzaID:     "pza_1",
		WrittenBy:   "Ann",
		CommentBody: "Great",
		Replies:     []Reply{{ReplyID: "rpl_1", ReplyBody: "Agreed", WrittenBy: "Bob"}},
	}})

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "pza_1", decoded["_id"])
	assert.Equal(t, float64(1), decoded["commentCount"])
	assert.NotContains(t, decoded, "CommentIDs")
	assert.Equal(t, []interface{}{}, decoded["toppings"])

	comments := decoded["comments"].([]interface{})
	require.Len(t, comments, 1)
	comment := comments[0].(map[string]interface{})
	assert.Equal(t, float64(1), comment["replyCount"])
}

func TestCommentMarshalJSON_EmptyReplies(t *testing.T) {
	data, err := json.Marshal(Comment{CommentID: "cmt_1"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"replies":[]`)
	assert.Contains(t, string(data), `"replyCount":0`)
}

func TestGenerateUUIDWithSuffix(t *testing.T) {
	a := GenerateUUIDWithSuffix("cmt")
	b := GenerateUUIDWithSuffix("cmt")
	assert.True(t, strings.HasPrefix(a, "cmt_"))
	assert.NotEqual(t, a, b)
}

func TestToppingsUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Toppings
	}{
		{name: "strings", in: `["cheese","basil"]`, want: Toppings{"cheese", "basil"}},
		{name: "mixed", in: `["cheese",2,true,{"extra":"olives"}]`, want: Toppings{"cheese", "2", "true", `{"extra":"olives"}`}},
		{name: "null elements dropped", in: `["cheese",null]`, want: Toppings{"cheese"}},
		{name: "single value", in: `"cheese"`, want: Toppings{"cheese"}},
		{name: "null", in: `null`, want: nil},
		{name: "empty", in: `[]`, want: Toppings{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Toppings
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONText(t *testing.T) {
	assert.Equal(t, "Test", JSONText(json.RawMessage(`"Test"`)))
	assert.Equal(t, "42", JSONText(json.RawMessage(` 42 `)))
	assert.Equal(t, "", JSONText(json.RawMessage(`null`)))
	assert.Equal(t, "", JSONText(nil))
	assert.Equal(t, `{"a":1}`, JSONText(json.RawMessage(`{ "a": 1 }`)))
}
