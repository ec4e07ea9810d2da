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

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pizzahunt/pizzahunt/api/model"
)

var errEmptyBody = errors.New("request body is required")

// CreatePizzas accepts either one pizza object or an array of them. An object
// returns the created pizza, an array returns the created array. Every field is
// optional; the size defaults to Large.
func (a Api) CreatePizzas(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		badRequest(c, errEmptyBody)
		return
	}

	if raw[0] == '[' {
		var batch []model.CreatePizza
		if err := json.Unmarshal(raw, &batch); err != nil {
			badRequest(c, err)
			return
		}
		if err := model.ValidateCreatePizzas(batch); err != nil {
			invalidInput(c, err)
			return
		}

		resp, err := a.pizzaHunt.CreatePizzas(c.Request.Context(), model.ToPizzas(batch))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	var newPizza model.CreatePizza
	if err := json.Unmarshal(raw, &newPizza); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := a.pizzaHunt.CreatePizza(c.Request.Context(), newPizza.ToPizza())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (a Api) GetAllPizzas(c *gin.Context) {
	resp, err := a.pizzaHunt.GetAllPizzas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetPizza(c *gin.Context) {
	resp, err := a.pizzaHunt.GetPizzaByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) UpdatePizza(c *gin.Context) {
	var update model.UpdatePizza
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, err)
		return
	}
	if err := update.ValidateUpdatePizza(); err != nil {
		invalidInput(c, err)
		return
	}

	resp, err := a.pizzaHunt.UpdatePizza(c.Request.Context(), c.Param("id"), update.ToPizzaUpdate())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) DeletePizza(c *gin.Context) {
	resp, err := a.pizzaHunt.DeletePizza(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
