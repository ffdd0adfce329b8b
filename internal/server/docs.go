package server

import "net/http"

// openAPIDoc describes the public surface. Served at /openapi.json; /docs
// redirects here.
const openAPIDoc = `{
  "openapi": "3.0.3",
  "info": {
    "title": "codechat",
    "description": "Chat gateway with a sandboxed code-interpreter tool.",
    "version": "1.0.0"
  },
  "paths": {
    "/chat": {
      "get": {
        "summary": "Run one chat turn",
        "parameters": [
          {
            "name": "message",
            "in": "query",
            "required": true,
            "schema": {"type": "string"}
          }
        ],
        "responses": {
          "200": {
            "description": "Final answer",
            "content": {
              "application/json": {
                "schema": {
                  "type": "object",
                  "properties": {
                    "output": {"type": "string", "nullable": true}
                  }
                }
              }
            }
          },
          "400": {"description": "Missing message parameter"},
          "500": {"description": "Pipeline failure"}
        }
      }
    },
    "/turns": {
      "get": {
        "summary": "List recorded turns",
        "parameters": [
          {"name": "limit", "in": "query", "schema": {"type": "integer"}},
          {"name": "offset", "in": "query", "schema": {"type": "integer"}}
        ],
        "responses": {"200": {"description": "Turn summaries"}}
      }
    },
    "/turns/{id}": {
      "get": {
        "summary": "Fetch one recorded turn",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}},
          {"name": "format", "in": "query", "schema": {"type": "string", "enum": ["markdown"]}}
        ],
        "responses": {
          "200": {"description": "Turn with transcript"},
          "404": {"description": "Unknown turn"}
        }
      }
    },
    "/healthz": {
      "get": {
        "summary": "Liveness check",
        "responses": {"200": {"description": "OK"}}
      }
    }
  }
}`

func handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(openAPIDoc))
}
