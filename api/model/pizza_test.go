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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestValidateCreatePizzas(t *testing.T) {
	assert.EqualError(t, ValidateCreatePizzas(nil), "at least one pizza is required")
	assert.EqualError(t, ValidateCreatePizzas([]CreatePizza{}), "at least one pizza is required")

	assert.NoError(t, ValidateCreatePizzas([]CreatePizza{
		{PizzaName: "Test", Size: "Large"},
		{},
		{PizzaName: "Ok", CreatedBy: "Ana", Size: "Family"},
	}))
}

func TestCreatePizzaDecodesLooseToppings(t *testing.T) {
	var p CreatePizza
	require.NoError(t, json.Unmarshal([]byte(`{"pizzaName":"Test","toppings":["cheese",2]}`), &p))

	pizza := p.ToPizza()
	assert.Equal(t, "Test", pizza.PizzaName)
	assert.Equal(t, "", pizza.CreatedBy)
	assert.Equal(t, []string{"cheese", "2"}, pizza.Toppings)
}

func TestValidateUpdatePizza(t *testing.T) {
	assert.NoError(t, (&UpdatePizza{}).ValidateUpdatePizza())
	assert.NoError(t, (&UpdatePizza{Size: strPtr("Medium")}).ValidateUpdatePizza())
	assert.Error(t, (&UpdatePizza{PizzaName: strPtr("")}).ValidateUpdatePizza())
	assert.Error(t, (&UpdatePizza{Size: strPtr("Huge")}).ValidateUpdatePizza())
}

func TestValidateCommentAndReply(t *testing.T) {
	assert.NoError(t, (&CreateComment{WrittenBy: "Ana", CommentBody: "Nice"}).ValidateCreateComment())
	assert.EqualError(t, (&CreateComment{WrittenBy: "Ana"}).ValidateCreateComment(), "commentBody: cannot be blank.")

	assert.NoError(t, (&CreateReply{WrittenBy: "Ben", ReplyBody: "Agreed"}).ValidateCreateReply())
	assert.EqualError(t, (&CreateReply{ReplyBody: "Agreed"}).ValidateCreateReply(), "writtenBy: cannot be blank.")
}

func TestToPizzaUpdate(t *testing.T) {
	toppings := []string{"olives"}
	u := UpdatePizza{PizzaName: strPtr("New"), Toppings: &toppings}.ToPizzaUpdate()
	assert.Equal(t, "New", *u.PizzaName)
	assert.Nil(t, u.Size)
	assert.Equal(t, []string{"olives"}, *u.Toppings)
}
