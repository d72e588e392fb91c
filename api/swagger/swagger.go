package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Sistema de Seguimiento de Estudiantes API",
        "description": "Case management for the student well-being program",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Auth",
            "description": "Login, token rotation and password changes"
        },
        {
            "name": "Catalogs",
            "description": "Enumerations used by the forms"
        },
        {
            "name": "Students",
            "description": "Student intake and case files"
        },
        {
            "name": "Sessions",
            "description": "Follow-up sessions and derivations"
        },
        {
            "name": "Users",
            "description": "Staff accounts"
        },
        {
            "name": "Dashboard",
            "description": "Program statistics"
        },
        {
            "name": "Exports",
            "description": "CSV exports"
        },
        {
            "name": "Reports",
            "description": "Asynchronous reports"
        },
        {
            "name": "Maintenance",
            "description": "Data-cleaning utilities"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check (database and cache)",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is unavailable"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Login",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Rotate refresh token",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RefreshTokenRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Revoke refresh token",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RefreshTokenRequest"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/api/v1/auth/change-password": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Change own password",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ChangePasswordRequest"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": [
                    "Auth"
                ],
                "summary": "Current user",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/catalogs": {
            "get": {
                "tags": [
                    "Catalogs"
                ],
                "summary": "Enumeration lists",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/students": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "List students",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "estado",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "show_archived",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Students"
                ],
                "summary": "Create student with its initial attention period",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateStudentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/students/alerts": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Students without a recent follow-up",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/students/active-by-year": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Active students per entry year",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/students/{rut}": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Student case file",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "rut",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Students"
                ],
                "summary": "Update student and record change history",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "rut",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/StudentInput"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/students/{rut}/reentries": {
            "post": {
                "tags": [
                    "Students"
                ],
                "summary": "Register re-entry",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "rut",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ReentryRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/students/{rut}/sessions/form": {
            "get": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Session form context",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "rut",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/students/{rut}/sessions": {
            "post": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Record follow-up session",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "rut",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SessionRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/sessions/{id}": {
            "get": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Get session",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Edit session",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SessionEditRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Delete session",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/api/v1/users": {
            "get": {
                "tags": [
                    "Users"
                ],
                "summary": "List users",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "rol",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "activo",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Users"
                ],
                "summary": "Create user",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateUserRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/users/{id}": {
            "get": {
                "tags": [
                    "Users"
                ],
                "summary": "Get user",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Users"
                ],
                "summary": "Update user",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateUserRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/dashboard": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Program statistics",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/exports/students.csv": {
            "get": {
                "tags": [
                    "Exports"
                ],
                "summary": "Students CSV",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv"
                ],
                "responses": {
                    "200": {
                        "description": "CSV file"
                    }
                }
            }
        },
        "/api/v1/exports/sessions.csv": {
            "get": {
                "tags": [
                    "Exports"
                ],
                "summary": "Sessions CSV",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv"
                ],
                "responses": {
                    "200": {
                        "description": "CSV file"
                    }
                }
            }
        },
        "/api/v1/reports": {
            "post": {
                "tags": [
                    "Reports"
                ],
                "summary": "Queue report",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ReportRequest"
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/reports/{id}": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Report job status",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/reports/download/{token}": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Download generated report",
                "produces": [
                    "application/pdf",
                    "text/csv"
                ],
                "parameters": [
                    {
                        "name": "token",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File"
                    },
                    "401": {
                        "description": "Invalid or expired token"
                    }
                }
            }
        },
        "/api/v1/admin/maintenance/trim-text": {
            "post": {
                "tags": [
                    "Maintenance"
                ],
                "summary": "Trim student text columns",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/admin/maintenance/backfill-periods": {
            "post": {
                "tags": [
                    "Maintenance"
                ],
                "summary": "Create missing attention periods",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            },
            "required": [
                "username",
                "password"
            ]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {
                    "type": "string"
                }
            },
            "required": [
                "refresh_token"
            ]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "current_password": {
                    "type": "string"
                },
                "new_password": {
                    "type": "string"
                },
                "confirm_password": {
                    "type": "string"
                }
            },
            "required": [
                "current_password",
                "new_password",
                "confirm_password"
            ]
        },
        "StudentInput": {
            "type": "object",
            "properties": {
                "nombre": {
                    "type": "string"
                },
                "apellido_paterno": {
                    "type": "string"
                },
                "apellido_materno": {
                    "type": "string"
                },
                "genero": {
                    "type": "string"
                },
                "sexo": {
                    "type": "string"
                },
                "nacionalidad": {
                    "type": "string"
                },
                "estado_civil": {
                    "type": "string"
                },
                "tiene_hijos": {
                    "type": "string"
                },
                "ocupacion_laboral": {
                    "type": "string"
                },
                "residencia_academica": {
                    "type": "string"
                },
                "residencia_familiar": {
                    "type": "string"
                },
                "celular": {
                    "type": "string"
                },
                "facultad": {
                    "type": "string"
                },
                "carrera_programa": {
                    "type": "string"
                },
                "estado_academico": {
                    "type": "string"
                },
                "fuente_derivacion": {
                    "type": "string"
                },
                "estado_en_programa": {
                    "type": "string"
                },
                "trabajadora_social_asignada": {
                    "type": "string"
                },
                "psicologo_asignado": {
                    "type": "string"
                },
                "cesfam_derivacion": {
                    "type": "string"
                },
                "tentativa_ideacion": {
                    "type": "string"
                },
                "nombre_contacto_emergencia": {
                    "type": "string"
                },
                "parentesco_contacto_emergencia": {
                    "type": "string"
                },
                "telefono_contacto_emergencia": {
                    "type": "string"
                },
                "beneficio_arancel": {
                    "type": "string"
                },
                "estado_derivacion_maestro": {
                    "type": "string"
                },
                "nota_importante": {
                    "type": "string"
                },
                "fecha_nacimiento": {
                    "type": "string",
                    "format": "date"
                },
                "fecha_ingreso_programa": {
                    "type": "string",
                    "format": "date"
                },
                "fecha_derivacion_cesfam": {
                    "type": "string",
                    "format": "date"
                },
                "autoriza_investigacion": {
                    "type": "boolean"
                }
            },
            "required": [
                "nombre",
                "apellido_paterno",
                "estado_en_programa"
            ]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "nombre": {
                    "type": "string"
                },
                "apellido_paterno": {
                    "type": "string"
                },
                "apellido_materno": {
                    "type": "string"
                },
                "genero": {
                    "type": "string"
                },
                "sexo": {
                    "type": "string"
                },
                "nacionalidad": {
                    "type": "string"
                },
                "estado_civil": {
                    "type": "string"
                },
                "tiene_hijos": {
                    "type": "string"
                },
                "ocupacion_laboral": {
                    "type": "string"
                },
                "residencia_academica": {
                    "type": "string"
                },
                "residencia_familiar": {
                    "type": "string"
                },
                "celular": {
                    "type": "string"
                },
                "facultad": {
                    "type": "string"
                },
                "carrera_programa": {
                    "type": "string"
                },
                "estado_academico": {
                    "type": "string"
                },
                "fuente_derivacion": {
                    "type": "string"
                },
                "estado_en_programa": {
                    "type": "string"
                },
                "trabajadora_social_asignada": {
                    "type": "string"
                },
                "psicologo_asignado": {
                    "type": "string"
                },
                "cesfam_derivacion": {
                    "type": "string"
                },
                "tentativa_ideacion": {
                    "type": "string"
                },
                "nombre_contacto_emergencia": {
                    "type": "string"
                },
                "parentesco_contacto_emergencia": {
                    "type": "string"
                },
                "telefono_contacto_emergencia": {
                    "type": "string"
                },
                "beneficio_arancel": {
                    "type": "string"
                },
                "estado_derivacion_maestro": {
                    "type": "string"
                },
                "nota_importante": {
                    "type": "string"
                },
                "fecha_nacimiento": {
                    "type": "string",
                    "format": "date"
                },
                "fecha_ingreso_programa": {
                    "type": "string",
                    "format": "date"
                },
                "fecha_derivacion_cesfam": {
                    "type": "string",
                    "format": "date"
                },
                "autoriza_investigacion": {
                    "type": "boolean"
                },
                "rut": {
                    "type": "string"
                }
            },
            "required": [
                "rut",
                "nombre",
                "apellido_paterno",
                "estado_en_programa"
            ]
        },
        "ReentryRequest": {
            "type": "object",
            "properties": {
                "fecha_ingreso": {
                    "type": "string",
                    "format": "date"
                },
                "motivo_ingreso": {
                    "type": "string"
                }
            },
            "required": [
                "fecha_ingreso",
                "motivo_ingreso"
            ]
        },
        "SessionEditRequest": {
            "type": "object",
            "properties": {
                "fecha_sesion": {
                    "type": "string",
                    "format": "date"
                },
                "trabajadora_social_sesion": {
                    "type": "string"
                },
                "psicologo_sesion": {
                    "type": "string"
                },
                "tipo_intervencion": {
                    "type": "string"
                },
                "resultado_cita": {
                    "type": "string"
                },
                "estado_derivacion_cesfam_actual": {
                    "type": "string"
                },
                "confirmacion_gestion_hora_cesfam": {
                    "type": "string"
                },
                "fechas_sesiones_cesfam": {
                    "type": "string"
                },
                "bitacora_sesion": {
                    "type": "string"
                }
            },
            "required": [
                "fecha_sesion"
            ]
        },
        "SessionRequest": {
            "type": "object",
            "properties": {
                "fecha_sesion": {
                    "type": "string",
                    "format": "date"
                },
                "trabajadora_social_sesion": {
                    "type": "string"
                },
                "psicologo_sesion": {
                    "type": "string"
                },
                "tipo_intervencion": {
                    "type": "string"
                },
                "resultado_cita": {
                    "type": "string"
                },
                "estado_derivacion_cesfam_actual": {
                    "type": "string"
                },
                "confirmacion_gestion_hora_cesfam": {
                    "type": "string"
                },
                "fechas_sesiones_cesfam": {
                    "type": "string"
                },
                "bitacora_sesion": {
                    "type": "string"
                },
                "cambio_estado_programa_a": {
                    "type": "string"
                },
                "cambio_estado_academico_a": {
                    "type": "string"
                },
                "beneficio_arancel": {
                    "type": "string"
                },
                "alta_mejora_animo": {
                    "type": "boolean"
                },
                "alta_disminucion_riesgo": {
                    "type": "boolean"
                },
                "alta_redes_apoyo": {
                    "type": "boolean"
                },
                "alta_adherencia_tratamiento": {
                    "type": "boolean"
                },
                "alta_no_registrado": {
                    "type": "boolean"
                },
                "otorga_extension": {
                    "type": "boolean"
                },
                "es_correccion": {
                    "type": "boolean"
                },
                "corrige_id_seguimiento": {
                    "type": "integer"
                }
            },
            "required": [
                "fecha_sesion"
            ]
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "username": {
                    "type": "string"
                },
                "nombre_completo": {
                    "type": "string"
                },
                "rol": {
                    "type": "string",
                    "enum": [
                        "admin",
                        "profesional",
                        "ingreso"
                    ]
                },
                "activo": {
                    "type": "boolean"
                },
                "password": {
                    "type": "string"
                },
                "confirm_password": {
                    "type": "string"
                }
            },
            "required": [
                "username",
                "rol",
                "password",
                "confirm_password"
            ]
        },
        "UpdateUserRequest": {
            "type": "object",
            "properties": {
                "nombre_completo": {
                    "type": "string"
                },
                "rol": {
                    "type": "string",
                    "enum": [
                        "admin",
                        "profesional",
                        "ingreso"
                    ]
                },
                "activo": {
                    "type": "boolean"
                },
                "password": {
                    "type": "string"
                },
                "confirm_password": {
                    "type": "string"
                }
            },
            "required": [
                "rol"
            ]
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string",
                    "enum": [
                        "dashboard",
                        "student_case",
                        "caseload"
                    ]
                },
                "rut": {
                    "type": "string"
                },
                "format": {
                    "type": "string",
                    "enum": [
                        "csv",
                        "pdf"
                    ]
                }
            },
            "required": [
                "type",
                "format"
            ]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "details": {
                    "type": "object"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
