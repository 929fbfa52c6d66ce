package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CourseGrade API",
        "description": "Course grade computation and anomaly detection service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Students", "description": "Roster management"},
        {"name": "Assignments", "description": "Catalog and per-assignment statistics"},
        {"name": "Scores", "description": "Submission score entry"},
        {"name": "Scales", "description": "Letter grade scales"},
        {"name": "Weights", "description": "Category weight configuration"},
        {"name": "Processing", "description": "Grade computation runs"},
        {"name": "Reports", "description": "CSV and PDF grade reports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "Tokens rotated"},
                    "401": {"description": "Token expired or revoked"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "responses": {"200": {"description": "Paginated roster"}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Add student",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate SIS ID"}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "responses": {"200": {"description": "Student"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Deactivate student",
                "responses": {"204": {"description": "Deactivated"}}
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments",
                "responses": {"200": {"description": "Catalog"}}
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Create assignment",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/assignments/{id}/stats": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Assignment statistics",
                "responses": {"200": {"description": "Submission counts, mean and median"}}
            }
        },
        "/scores": {
            "put": {
                "tags": ["Scores"],
                "summary": "Record or replace a score",
                "responses": {"200": {"description": "Stored"}}
            }
        },
        "/scores/bulk": {
            "put": {
                "tags": ["Scores"],
                "summary": "Record a batch of scores",
                "responses": {"200": {"description": "Stored count"}}
            }
        },
        "/scales": {
            "get": {
                "tags": ["Scales"],
                "summary": "List grade scales",
                "responses": {"200": {"description": "Scales"}}
            },
            "post": {
                "tags": ["Scales"],
                "summary": "Create grade scale",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/weights": {
            "get": {
                "tags": ["Weights"],
                "summary": "Current weight configuration",
                "responses": {"200": {"description": "Weights"}}
            },
            "put": {
                "tags": ["Weights"],
                "summary": "Replace weight configuration",
                "responses": {
                    "200": {"description": "Stored"},
                    "400": {"description": "Weights do not sum to 1.0"}
                }
            }
        },
        "/runs": {
            "post": {
                "tags": ["Processing"],
                "summary": "Run grade computation",
                "responses": {
                    "201": {"description": "Run results"},
                    "412": {"description": "No weight configuration"}
                }
            },
            "get": {
                "tags": ["Processing"],
                "summary": "List recent runs",
                "responses": {"200": {"description": "Runs"}}
            }
        },
        "/runs/summary": {
            "get": {
                "tags": ["Processing"],
                "summary": "Latest run summary",
                "responses": {"200": {"description": "Cohort statistics and histogram"}}
            }
        },
        "/runs/{id}/flagged": {
            "get": {
                "tags": ["Processing"],
                "summary": "Flagged students",
                "responses": {"200": {"description": "Anomaly-carrying results"}}
            }
        },
        "/reports/grades.csv": {
            "get": {
                "tags": ["Reports"],
                "summary": "Grade report as CSV",
                "responses": {"200": {"description": "CSV document"}}
            }
        },
        "/reports/grades.pdf": {
            "get": {
                "tags": ["Reports"],
                "summary": "Grade report as PDF",
                "responses": {"200": {"description": "PDF document"}}
            }
        },
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
