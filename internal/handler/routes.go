package handler

// APIPrefix is the canonical base path of the public HTTP API.
// Keep a single source of truth to avoid path drift across handlers and tests.
const APIPrefix = "/api"
