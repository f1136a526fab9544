// Package commands defines the powervate-api CLI.
//
// Commands
//
//   - serve           Run the admin HTTP API
//   - create-admin    Create an admin account or promote an existing user
//   - reset-password  Set a new password for an account
//
// The root command loads the configuration (YAML file, .env, environment) and
// builds the logger before any subcommand runs. Subcommands open their own
// MongoDB connection.
package commands
