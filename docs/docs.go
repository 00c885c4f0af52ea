// Package docs holds the OpenAPI document served by http-swagger.
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
        "/cities": {
            "get": {
                "description": "Returns the high-population city batch with one card image per city.",
                "produces": ["application/json"],
                "tags": ["cities"],
                "summary": "List the curated city grid",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/types.CityCard"}}
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {"$ref": "#/definitions/api.Response"}
                    }
                }
            }
        },
        "/cities/cache": {
            "delete": {
                "tags": ["cities"],
                "summary": "Drop the cached city listing",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/destinations/{cityName}": {
            "get": {
                "description": "Looks up image, narrative and encyclopedia summary for a place and merges them.",
                "produces": ["application/json"],
                "tags": ["destinations"],
                "summary": "Aggregate a destination",
                "parameters": [
                    {"type": "string", "description": "Place name", "name": "cityName", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.DestinationRecord"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/lookups": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["lookups"],
                "summary": "Start a background destination lookup",
                "parameters": [
                    {"description": "Place to look up", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.StartLookupRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/types.Lookup"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/lookups/{lookupID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["lookups"],
                "summary": "Get a destination lookup",
                "parameters": [
                    {"type": "string", "description": "Lookup ID", "name": "lookupID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Lookup"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        }
    },
    "definitions": {
        "api.Response": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "upstream unavailable"},
                "request_id": {"type": "string"},
                "success": {"type": "boolean", "example": false}
            }
        },
        "types.CityCard": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "country": {"type": "string"},
                "population": {"type": "integer"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "image_url": {"type": "string"},
                "description": {"type": "string"},
                "slug": {"type": "string"}
            }
        },
        "types.NarrativeSection": {
            "type": "object",
            "properties": {
                "slot": {"type": "string"},
                "title": {"type": "string"},
                "body": {"type": "string"},
                "items": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.DestinationRecord": {
            "type": "object",
            "properties": {
                "place": {"type": "string"},
                "country": {"type": "string"},
                "image_url": {"type": "string"},
                "description": {"type": "string"},
                "preamble": {"type": "string"},
                "description_is_ai": {"type": "boolean"},
                "wiki_url": {"type": "string"},
                "wiki_extract": {"type": "string"},
                "wiki_thumbnail": {"type": "string"},
                "highlights": {"type": "array", "items": {"type": "string"}},
                "history": {"$ref": "#/definitions/types.NarrativeSection"},
                "best_time_to_visit": {"$ref": "#/definitions/types.NarrativeSection"},
                "attractions": {"$ref": "#/definitions/types.NarrativeSection"},
                "local_food": {"$ref": "#/definitions/types.NarrativeSection"},
                "transportation": {"$ref": "#/definitions/types.NarrativeSection"},
                "festivals": {"$ref": "#/definitions/types.NarrativeSection"},
                "missing_sections": {"type": "array", "items": {"type": "string"}},
                "slug": {"type": "string"}
            }
        },
        "types.Lookup": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "place": {"type": "string"},
                "state": {"type": "string", "enum": ["idle", "loading", "success", "error"]},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "record": {"$ref": "#/definitions/types.DestinationRecord"},
                "error": {"type": "string"}
            }
        },
        "types.StartLookupRequest": {
            "type": "object",
            "properties": {
                "place": {"type": "string", "example": "Paris"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "GeziAI API",
	Description:      "Destination discovery: city grid, aggregated destination records and background lookups.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
