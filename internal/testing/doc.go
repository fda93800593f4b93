// Package testing provides test utilities, builders, and fixtures for unit
// and integration tests.
//
// This package centralizes common testing patterns to avoid duplication
// across test files:
//   - ConfigBuilder: Fluent builder for creating test configurations
//   - FakeCloud: In-memory aws.CloudManager recording calls
//   - CloudFixture: Pre-configured fakes for common scenarios
//
// Usage:
//
//	cfg := ektest.NewConfigBuilder().
//	    WithName("test").
//	    WithDatabase().
//	    Build()
//
//	fixture := ektest.NewCloudFixture()
//	cloud := fixture.RunningPlatform("test")
package testing
