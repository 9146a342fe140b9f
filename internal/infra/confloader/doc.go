// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. values already present in the target struct (defaults)
//  2. a YAML file
//  3. LEDWALL_* environment variables
//
// Environment names are resolved against the koanf tags of the target,
// so LEDWALL_DISPLAY_NUM_SLOTS sets display.num_slots rather than
// display.num.slots.
//
// Watcher reports changes to the configuration file so the server can
// apply the settings that are safe to change at runtime.
package confloader
