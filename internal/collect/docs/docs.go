// Package docs contains the generated swagger documentation.
// Run `swag init -g internal/collect/server.go -o internal/collect/docs` to regenerate.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Nudge Collector API",
        "description": "API for ingesting and querying hint-telemetry events from nudge editor hosts.",
        "version": "1.0"
    },
    "host": "localhost:8790",
    "basePath": "/v1",
    "paths": {
        "/events": {
            "post": {
                "description": "Receives a batch of hint-telemetry events from an editor host",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Ingest events",
                "parameters": [
                    {
                        "description": "Event batch",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/IngestRequest"
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/IngestResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            }
        },
        "/events/search": {
            "get": {
                "description": "Returns stored events matching the filters, newest first",
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Search events",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Filter by instance id",
                        "name": "instance_id",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by session id",
                        "name": "session_id",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by event name",
                        "name": "name",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Only events after this RFC3339 time",
                        "name": "since",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Max results (default 100)",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Results offset",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/Event"
                            }
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            }
        },
        "/stats": {
            "get": {
                "description": "Returns aggregate event, session, and instance counts",
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Collector statistics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/CollectorStats"
                        }
                    }
                }
            }
        },
        "/progress": {
            "get": {
                "description": "Derives each instance's furthest tutorial position from its transition events",
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Tutorial progress",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/TutorialProgress"
                            }
                        }
                    }
                }
            }
        },
        "/instances": {
            "get": {
                "description": "Returns registered editor hosts with their status",
                "produces": ["application/json"],
                "tags": ["instances"],
                "summary": "List instances",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/InstanceInfo"
                            }
                        }
                    }
                }
            }
        },
        "/instances/register": {
            "post": {
                "description": "Registers an editor host so it appears in instance listings",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["instances"],
                "summary": "Register instance",
                "parameters": [
                    {
                        "description": "Instance details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/InstanceRegistration"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/InstanceInfo"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            }
        },
        "/collector/health": {
            "get": {
                "description": "Returns collector health and version",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    },
    "definitions": {
        "IngestRequest": {
            "type": "object",
            "properties": {
                "instance_id": {"type": "string"},
                "session_id": {"type": "string"},
                "events": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Event"
                    }
                }
            }
        },
        "IngestResponse": {
            "type": "object",
            "properties": {
                "accepted": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "Event": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "passive": {"type": "boolean"},
                "time": {"type": "string", "format": "date-time"},
                "instance_id": {"type": "string"},
                "session_id": {"type": "string"},
                "attributes": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                }
            }
        },
        "CollectorStats": {
            "type": "object",
            "properties": {
                "total_events": {"type": "integer"},
                "total_sessions": {"type": "integer"},
                "total_instances": {"type": "integer"},
                "active_instances": {"type": "integer"},
                "db_size_bytes": {"type": "integer"},
                "uptime_seconds": {"type": "number"},
                "started_at": {"type": "string", "format": "date-time"}
            }
        },
        "TutorialProgress": {
            "type": "object",
            "properties": {
                "instance_id": {"type": "string"},
                "furthest_state": {"type": "string"},
                "transitions": {"type": "integer"},
                "last_event": {"type": "string", "format": "date-time"}
            }
        },
        "InstanceRegistration": {
            "type": "object",
            "properties": {
                "instance_id": {"type": "string"},
                "hostname": {"type": "string"},
                "version": {"type": "string"},
                "started_at": {"type": "string", "format": "date-time"}
            }
        },
        "InstanceInfo": {
            "type": "object",
            "properties": {
                "instance_id": {"type": "string"},
                "hostname": {"type": "string"},
                "version": {"type": "string"},
                "started_at": {"type": "string", "format": "date-time"},
                "last_heartbeat": {"type": "string", "format": "date-time"},
                "event_count": {"type": "integer"},
                "status": {"type": "string"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8790",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Nudge Collector API",
	Description:      "API for ingesting and querying hint-telemetry events from nudge editor hosts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
