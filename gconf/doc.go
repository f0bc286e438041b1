/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration entity, stored under the
"_c:<package name>" key. A configuration is loaded from the "conf" section of
the genesis file and can later be changed by its owner using the
UpdateConfigurationHandler.
*/
package gconf
