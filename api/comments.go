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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pizzahunt/pizzahunt/api/model"
)

// AddComment stores a comment on a pizza and returns the pizza with comments.
func (a Api) AddComment(c *gin.Context) {
	var newComment model.CreateComment
	if err := c.ShouldBindJSON(&newComment); err != nil {
		badRequest(c, err)
		return
	}
	if err := newComment.ValidateCreateComment(); err != nil {
		invalidInput(c, err)
		return
	}

	resp, err := a.pizzaHunt.AddComment(c.Request.Context(), c.Param("pizzaId"), newComment.ToComment())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) RemoveComment(c *gin.Context) {
	resp, err := a.pizzaHunt.RemoveComment(c.Request.Context(), c.Param("pizzaId"), c.Param("commentId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AddReply appends a reply to a comment and returns the comment.
func (a Api) AddReply(c *gin.Context) {
	var newReply model.CreateReply
	if err := c.ShouldBindJSON(&newReply); err != nil {
		badRequest(c, err)
		return
	}
	if err := newReply.ValidateCreateReply(); err != nil {
		invalidInput(c, err)
		return
	}

	resp, err := a.pizzaHunt.AddReply(c.Request.Context(), c.Param("pizzaId"), c.Param("commentId"), newReply.ToReply())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) RemoveReply(c *gin.Context) {
	resp, err := a.pizzaHunt.RemoveReply(c.Request.Context(), c.Param("pizzaId"), c.Param("commentId"), c.Param("replyId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
