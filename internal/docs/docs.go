// Package docs holds the registered OpenAPI document served at /swagger/doc.json
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/users/register": {
			"post": {
				"tags": [
					"Users"
				],
				"summary": "Register a new user",
				"produces": [
					"application/json"
				],
				"description": "Creates an account; the avatar is derived from the email via Gravatar",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "registerRequest",
						"name": "registerRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.RegisterRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.User"
						}
					},
					"400": {
						"description": "Validation error or email already registered",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/users/login": {
			"post": {
				"tags": [
					"Users"
				],
				"summary": "Log in",
				"produces": [
					"application/json"
				],
				"description": "Exchanges email and password for a bearer token",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "loginRequest",
						"name": "loginRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.LoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/services.LoginResponse"
						}
					},
					"400": {
						"description": "Validation error or incorrect password",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "User not found",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"429": {
						"description": "Too many failed attempts",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/users/current": {
			"get": {
				"tags": [
					"Users"
				],
				"summary": "Current user",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/services.CurrentUserResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/profile": {
			"get": {
				"tags": [
					"Profile"
				],
				"summary": "Current user's profile",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Profile"
						}
					},
					"404": {
						"description": "There is no profile for this user",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"tags": [
					"Profile"
				],
				"summary": "Create or update the current user's profile",
				"produces": [
					"application/json"
				],
				"description": "Absent optional fields keep their stored value; skills is a comma-separated list",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "profileRequest",
						"name": "profileRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.ProfileRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Profile"
						}
					},
					"400": {
						"description": "Validation error or handle taken",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"Profile"
				],
				"summary": "Delete the current user's profile and account",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/services.DeleteResponse"
						}
					}
				}
			}
		},
		"/profile/all": {
			"get": {
				"tags": [
					"Profile"
				],
				"summary": "All profiles",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/models.Profile"
							}
						}
					}
				}
			}
		},
		"/profile/handle/{handle}": {
			"get": {
				"tags": [
					"Profile"
				],
				"summary": "Profile by handle",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Handle",
						"name": "handle",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Profile"
						}
					},
					"404": {
						"description": "This handle does not exist",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/profile/user/{user_id}": {
			"get": {
				"tags": [
					"Profile"
				],
				"summary": "Profile by user id",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "User ID",
						"name": "user_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Profile"
						}
					},
					"404": {
						"description": "There is no profile with this id",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/profile/experience": {
			"post": {
				"tags": [
					"Profile"
				],
				"summary": "Add an experience entry",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "experienceRequest",
						"name": "experienceRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.ExperienceRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Profile"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/profile/experience/{exp_id}": {
			"delete": {
				"tags": [
					"Profile"
				],
				"summary": "Remove an experience entry",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Experience ID",
						"name": "exp_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Profile"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/profile/education": {
			"post": {
				"tags": [
					"Profile"
				],
				"summary": "Add an education entry",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "educationRequest",
						"name": "educationRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.EducationRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Profile"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/profile/education/{edu_id}": {
			"delete": {
				"tags": [
					"Profile"
				],
				"summary": "Remove an education entry",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Education ID",
						"name": "edu_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Profile"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/posts": {
			"get": {
				"tags": [
					"Posts"
				],
				"summary": "All posts, newest first",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/models.Post"
							}
						}
					}
				}
			},
			"post": {
				"tags": [
					"Posts"
				],
				"summary": "Create a post",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "postRequest",
						"name": "postRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.PostRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Post"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/posts/{id}": {
			"get": {
				"tags": [
					"Posts"
				],
				"summary": "Post by id",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Post ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Post"
						}
					},
					"404": {
						"description": "No post found",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"Posts"
				],
				"summary": "Delete a post",
				"produces": [
					"application/json"
				],
				"description": "Only the author can delete a post",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Post ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/services.DeleteResponse"
						}
					},
					"401": {
						"description": "User not authorized to delete this post",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "No post found",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/posts/like/{id}": {
			"post": {
				"tags": [
					"Posts"
				],
				"summary": "Like a post",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Post ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Post"
						}
					},
					"400": {
						"description": "You have already liked this post",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "No post found",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/posts/unlike/{id}": {
			"post": {
				"tags": [
					"Posts"
				],
				"summary": "Remove a like",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Post ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Post"
						}
					},
					"400": {
						"description": "You have not liked this post",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "No post found",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/posts/comment/{id}": {
			"post": {
				"tags": [
					"Posts"
				],
				"summary": "Comment on a post",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Post ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "commentRequest",
						"name": "commentRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.PostRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Post"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "No post found",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		},
		"/posts/comment/{id}/{comment_id}": {
			"delete": {
				"tags": [
					"Posts"
				],
				"summary": "Remove a comment",
				"produces": [
					"application/json"
				],
				"description": "Any authenticated user may remove an existing comment",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Post ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "Comment ID",
						"name": "comment_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Post"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "Comment does not exist",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"models.User": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"avatar": {
					"type": "string"
				},
				"date": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"models.UserSummary": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"avatar": {
					"type": "string"
				}
			}
		},
		"models.Experience": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"title": {
					"type": "string"
				},
				"company": {
					"type": "string"
				},
				"location": {
					"type": "string"
				},
				"from": {
					"type": "string",
					"format": "date-time"
				},
				"to": {
					"type": "string",
					"format": "date-time"
				},
				"current": {
					"type": "boolean"
				},
				"description": {
					"type": "string"
				}
			}
		},
		"models.Education": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"school": {
					"type": "string"
				},
				"degree": {
					"type": "string"
				},
				"fieldofstudy": {
					"type": "string"
				},
				"from": {
					"type": "string",
					"format": "date-time"
				},
				"to": {
					"type": "string",
					"format": "date-time"
				},
				"current": {
					"type": "boolean"
				},
				"description": {
					"type": "string"
				}
			}
		},
		"models.Profile": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"user": {
					"$ref": "#/definitions/models.UserSummary"
				},
				"handle": {
					"type": "string"
				},
				"company": {
					"type": "string"
				},
				"website": {
					"type": "string"
				},
				"location": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"skills": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"bio": {
					"type": "string"
				},
				"githubusername": {
					"type": "string"
				},
				"social": {
					"type": "object",
					"additionalProperties": {
						"type": "string"
					}
				},
				"experience": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Experience"
					}
				},
				"education": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Education"
					}
				},
				"date": {
					"type": "string",
					"format": "date-time"
				},
				"updated_at": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"models.Like": {
			"type": "object",
			"properties": {
				"user": {
					"type": "string"
				}
			}
		},
		"models.Comment": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"user": {
					"type": "string"
				},
				"text": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"avatar": {
					"type": "string"
				},
				"date": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"models.Post": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"user": {
					"type": "string"
				},
				"text": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"avatar": {
					"type": "string"
				},
				"likes": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Like"
					}
				},
				"comments": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Comment"
					}
				},
				"date": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"services.RegisterRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				},
				"password2": {
					"type": "string"
				}
			},
			"required": [
				"name",
				"email",
				"password",
				"password2"
			]
		},
		"services.LoginRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			},
			"required": [
				"email",
				"password"
			]
		},
		"services.LoginResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean"
				},
				"token": {
					"type": "string",
					"example": "Bearer eyJhbGciOiJIUzI1NiJ9..."
				}
			}
		},
		"services.CurrentUserResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"avatar": {
					"type": "string"
				}
			}
		},
		"services.ProfileRequest": {
			"type": "object",
			"properties": {
				"handle": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"skills": {
					"type": "string",
					"example": "Go, SQL, Docker"
				},
				"company": {
					"type": "string"
				},
				"website": {
					"type": "string"
				},
				"location": {
					"type": "string"
				},
				"bio": {
					"type": "string"
				},
				"githubusername": {
					"type": "string"
				},
				"youtube": {
					"type": "string"
				},
				"twitter": {
					"type": "string"
				},
				"facebook": {
					"type": "string"
				},
				"linkedin": {
					"type": "string"
				},
				"instagram": {
					"type": "string"
				}
			},
			"required": [
				"handle",
				"status",
				"skills"
			]
		},
		"services.ExperienceRequest": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string"
				},
				"company": {
					"type": "string"
				},
				"location": {
					"type": "string"
				},
				"from": {
					"type": "string",
					"example": "2020-01-31"
				},
				"to": {
					"type": "string"
				},
				"current": {
					"type": "boolean"
				},
				"description": {
					"type": "string"
				}
			},
			"required": [
				"title",
				"company",
				"location",
				"from"
			]
		},
		"services.EducationRequest": {
			"type": "object",
			"properties": {
				"school": {
					"type": "string"
				},
				"degree": {
					"type": "string"
				},
				"fieldofstudy": {
					"type": "string"
				},
				"from": {
					"type": "string",
					"example": "2016-09-01"
				},
				"to": {
					"type": "string"
				},
				"current": {
					"type": "boolean"
				},
				"description": {
					"type": "string"
				}
			},
			"required": [
				"school",
				"degree",
				"fieldofstudy",
				"from"
			]
		},
		"services.PostRequest": {
			"type": "object",
			"properties": {
				"text": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"avatar": {
					"type": "string"
				}
			},
			"required": [
				"text",
				"name",
				"avatar"
			]
		},
		"services.DeleteResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean"
				}
			}
		},
		"services.HealthReport": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"database": {
					"type": "string"
				},
				"cache": {
					"type": "string"
				},
				"events": {
					"type": "string"
				},
				"timestamp": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"validation.FieldError": {
			"type": "object",
			"properties": {
				"field": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"code": {
					"type": "string"
				}
			}
		},
		"response.ErrorDetail": {
			"type": "object",
			"properties": {
				"type": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"fields": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/validation.FieldError"
					}
				}
			}
		},
		"response.ErrorResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean"
				},
				"error": {
					"$ref": "#/definitions/response.ErrorDetail"
				},
				"request_id": {
					"type": "string"
				},
				"timestamp": {
					"type": "string",
					"format": "date-time"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and JWT token.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "DevConnector API",
	Description:      "Developer profiles, posts, likes and comments",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
